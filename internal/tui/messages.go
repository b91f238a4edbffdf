package tui

import "github.com/menta2k/adaptvideo/pkg/types"

// Messages for the tea program

// doneMsg is sent when a controller action finishes. The controller has
// already reported any error on the screen.
type doneMsg struct {
	action string
	err    error
}

// historyMsg carries the upload history.
type historyMsg struct {
	videos []types.UploadedVideo
	err    error
}

// framesMsg is sent when the preview frames are decoded.
type framesMsg struct {
	count int
	err   error
}

// savedMsg is sent when a file was written to the output directory.
type savedMsg struct {
	what string
	path string
	err  error
}

// redrawMsg is sent by the screen when it changes outside Update.
type redrawMsg struct{}
