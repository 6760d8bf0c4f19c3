package ui

// This file exists just to keep model.go somewhat smaller.
type menuKey string

const (
	cfgResolution menuKey = "cfgResolution"
	cfgPreviews   menuKey = "cfgPreviews"
	cfgSave       menuKey = "cfgSave"
	back          menuKey = "back"
)

const (
	emptyText     = "No images available"
	loadingText   = "Loading..."
	errorText     = "Error loading"
	anyKeyText    = "Press any key to continue."
	wideThreshold = 120 // Terminal cells; above this the grid gets a third column
	tileHeight    = 4
)
