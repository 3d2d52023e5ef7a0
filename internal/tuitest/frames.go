package tuitest

import (
	"regexp"
	"strconv"
	"strings"
)

// Frame is one redraw of the program, as raw bytes and as plain text.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

var (
	// A redraw either clears the screen or walks the cursor back up over the
	// previous frame, clearing lines on the way. Each run is one boundary.
	redrawPattern     = regexp.MustCompile(`\x1b\[[0-9;]*J|(?:(?:\x1b\[2K)?\x1b\[[0-9]*A)+`)
	cursorDownPattern = regexp.MustCompile(`\x1b\[([0-9]*)B`)
	csiPattern        = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscPattern        = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

func parseFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	var frames []Frame
	for _, segment := range redrawPattern.Split(stream, -1) {
		segment = strings.Trim(segment, "\x00")
		plain := normalizeLines(stripANSI(expandCursorDown(segment)))
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: segment, Plain: plain})
	}
	return frames
}

// expandCursorDown keeps rows aligned when the renderer skips unchanged
// lines by moving the cursor instead of repainting them.
func expandCursorDown(s string) string {
	return cursorDownPattern.ReplaceAllStringFunc(s, func(seq string) string {
		n, err := strconv.Atoi(cursorDownPattern.FindStringSubmatch(seq)[1])
		if err != nil || n < 1 {
			n = 1
		}
		return strings.Repeat("\n", n)
	})
}

func stripANSI(s string) string {
	s = oscPattern.ReplaceAllString(s, "")
	s = csiPattern.ReplaceAllString(s, "")
	return strings.NewReplacer("\x0e", "", "\x0f", "").Replace(s)
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
