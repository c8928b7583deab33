// Package main provides the entry point for the MTP Placer viewer.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"mtp-placer/internal/app"
	"mtp-placer/internal/prefs"
	"mtp-placer/internal/version"
	"mtp-placer/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const appID = "io.mtp-placer.viewer"

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("mtp-placer"))
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s", version.String("MTP Placer"))

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.PlacerTheme{})

	appState := app.NewState()
	appPrefs := prefs.Load()
	appState.SetShowNozzles(appPrefs.Bool(prefs.KeyShowNozzles, true))

	win := mainwindow.New(fyneApp, appState, appPrefs)

	// Handle command line arguments, else reopen the last project
	projectPath := flag.Arg(0)
	if projectPath == "" {
		projectPath = appPrefs.String(prefs.KeyLastProject)
	}
	if projectPath != "" {
		win.OpenProject(projectPath)
	}

	setupHotReload(win)

	win.ShowAndRun()
}

// setupHotReload offers a restart when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewExecutableWatcher(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	execPath := reloader.Paths()[0]
	log.Printf("Hot reload: watching %s", execPath)

	reloader.OnChange(func([]string) {
		log.Println("Hot reload: newer binary detected")
		reloader.Stop()
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				log.Println("Hot reload: restarting...")
				win.Close()
				if err := app.RestartProcess(execPath); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})

	reloader.Start()
}
