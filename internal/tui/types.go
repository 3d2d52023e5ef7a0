package tui

import "time"

type stage int

const (
	stageBrowse stage = iota
	stageSearch
)

const noCategory = -1

const heroTagline = "Bite-sized mental models, one card at a time."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	headerHeight              = 4
	footerHeight              = 2
)

const (
	defaultScrollTopThreshold  = 15
	defaultCategoryScrollDelay = 100 * time.Millisecond
	defaultCopyReset           = 2 * time.Second
)

const shareCommand = "mindsnack browse --card"
