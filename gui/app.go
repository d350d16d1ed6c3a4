//go:build gui

package gui

import (
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const chatTail = 4

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	orb     *OrbWidget
	status  *canvas.Text
	chat    *widget.Label

	trayMenu *fyne.Menu
	micItem  *fyne.MenuItem

	onReady func()
	onMic   func()
	onCopy  func()

	chatLines []string
	posX      int
	posY      int
}

func NewApp(onReady func()) *App {
	return &App{onReady: onReady}
}

// OnMicToggle registers the handler for the tray microphone item.
func (a *App) OnMicToggle(fn func()) { a.onMic = fn }

// OnCopyLast registers the handler for the tray Copy Last Reply item.
func (a *App) OnCopyLast(fn func()) { a.onCopy = fn }

func Run(a *App) error {
	a.fyneApp = app.NewWithID("com.ghost.assistant")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	icon := fyne.NewStaticResource("ghost.png", appIcon())
	a.fyneApp.SetIcon(icon)

	// Set up system tray using Fyne's built-in support
	if desk, ok := a.fyneApp.(desktop.App); ok {
		a.micItem = fyne.NewMenuItem("Enable Microphone", func() {
			if a.onMic != nil {
				a.onMic()
			}
		})
		copyItem := fyne.NewMenuItem("Copy Last Reply", func() {
			if a.onCopy != nil {
				a.onCopy()
			}
		})
		a.trayMenu = fyne.NewMenu("ghost",
			a.micItem,
			copyItem,
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Quit", func() {
				a.fyneApp.Quit()
			}),
		)
		desk.SetSystemTrayMenu(a.trayMenu)
		desk.SetSystemTrayIcon(icon)
	}

	// Get primary monitor work area for positioning
	var screenW, screenH int
	monitor := glfw.GetPrimaryMonitor()
	if monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080 // fallback
	}

	// Create frameless splash window on desktop
	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("ghost")
	}

	a.orb = NewOrbWidget()

	a.status = canvas.NewText("Awaiting Orders.", color.RGBA{120, 200, 255, 255})
	a.status.Alignment = fyne.TextAlignCenter
	a.status.TextSize = 15

	a.chat = widget.NewLabel("")
	a.chat.Wrapping = fyne.TextWrapWord

	content := container.NewVBox(a.orb, a.status, a.chat)
	a.window.SetContent(content)
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)

	orbSize := a.orb.MinSize()
	winW := orbSize.Width
	winH := orbSize.Height + 140
	a.window.Resize(fyne.NewSize(winW, winH))

	// Bottom-center position (with margin for dock)
	a.posX = (screenW - int(winW)) / 2
	a.posY = screenH - int(winH) - 20

	go a.onReady()

	// Event loop runs with the window hidden until the first Show
	a.fyneApp.Run()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) Show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}

		// Position and float the window before showing
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.SetAttrib(glfw.Floating, glfw.True)
		}

		// Show without taking focus when GLFW is available
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.Show()
		} else {
			a.window.Show()
		}
	})
}

// SetStatus updates the status line. active drives the orb palette.
func (a *App) SetStatus(text string, active bool) {
	a.orb.SetActive(active)
	fyne.Do(func() {
		a.status.Text = text
		a.status.Color = color.RGBA{120, 200, 255, 255}
		a.status.Refresh()
	})
}

// SetWarning paints the status line orange until the next status update.
func (a *App) SetWarning(text string) {
	fyne.Do(func() {
		a.status.Text = text
		a.status.Color = color.RGBA{255, 170, 60, 255}
		a.status.Refresh()
	})
}

// AddChat appends a line to the conversation tail under the orb.
func (a *App) AddChat(who, text string) {
	line := who + ": " + text
	fyne.Do(func() {
		a.chatLines = append(a.chatLines, line)
		if len(a.chatLines) > chatTail {
			a.chatLines = a.chatLines[len(a.chatLines)-chatTail:]
		}
		a.chat.SetText(strings.Join(a.chatLines, "\n"))
	})
}

// SetMic retitles the tray microphone item.
func (a *App) SetMic(on bool) {
	fyne.Do(func() {
		if a.micItem == nil {
			return
		}
		if on {
			a.micItem.Label = "Disable Microphone"
		} else {
			a.micItem.Label = "Enable Microphone"
		}
		a.trayMenu.Refresh()
	})
}

// SetLevel feeds the orb animation. Mutex-based, no fyne.Do needed.
func (a *App) SetLevel(level float64) {
	a.orb.SetLevel(level)
}
