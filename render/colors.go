package render

import "github.com/gdamore/tcell/v2"

// Palette
var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbFree       = tcell.NewRGBColor(60, 62, 80)    // Dim dots on open floor
	RgbObstacle   = tcell.NewRGBColor(120, 124, 150) // Wall blocks
	RgbAgent      = tcell.NewRGBColor(255, 165, 0)   // Orange agent
	RgbTarget     = tcell.NewRGBColor(80, 220, 120)  // Green target
	RgbReached    = tcell.NewRGBColor(255, 255, 0)   // Agent standing on reached target

	RgbTitle      = tcell.NewRGBColor(255, 255, 255)
	RgbStatusText = tcell.NewRGBColor(180, 180, 180) // Brighter gray
	RgbLogText    = tcell.NewRGBColor(200, 200, 200)
	RgbLogBorder  = tcell.NewRGBColor(90, 90, 110)
	RgbAlert      = tcell.NewRGBColor(255, 80, 80) // Error red

	RgbButtonBg   = tcell.NewRGBColor(135, 206, 250) // Light sky blue
	RgbButtonText = tcell.NewRGBColor(0, 0, 0)
)

// Styles derived from the palette
var (
	styleBase     = tcell.StyleDefault.Background(RgbBackground)
	styleFree     = styleBase.Foreground(RgbFree)
	styleObstacle = styleBase.Foreground(RgbObstacle)
	styleAgent    = styleBase.Foreground(RgbAgent).Bold(true)
	styleTarget   = styleBase.Foreground(RgbTarget).Bold(true)
	styleReached  = styleBase.Foreground(RgbReached).Bold(true)
	styleTitle    = styleBase.Foreground(RgbTitle).Bold(true)
	styleStatus   = styleBase.Foreground(RgbStatusText)
	styleLog      = styleBase.Foreground(RgbLogText)
	styleBorder   = styleBase.Foreground(RgbLogBorder)
	styleAlert    = styleBase.Foreground(RgbAlert).Bold(true)
	styleButton   = tcell.StyleDefault.Background(RgbButtonBg).Foreground(RgbButtonText)
)
