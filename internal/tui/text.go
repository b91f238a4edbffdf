package tui

// UI text
const (
	TextTitle       = "adaptvideo"
	TextNoVideo     = "no video: press u to upload or h to pick from history"
	TextPathPrompt  = "video file: "
	TextAskPrompt   = "ask the analyser: "
	TextBusy        = "working on %s..."
	TextFramesReady = "%d preview frames ready, press l to play one cycle"

	TextFooterMain = "u upload · h history · t template · 1-9 subjects · m mode · arrows+enter position · " +
		"p preview · o original · v converted · l play · c convert · C convert at position · " +
		"s compare · a ask · w save frames · d download · q quit"
	TextFooterList  = "↑/↓ move · enter choose · esc back"
	TextFooterInput = "enter submit · esc cancel"
)
