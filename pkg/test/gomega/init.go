// Package lgomega lets gomega's Ω and Expect be used in plain go tests
// without a ginkgo runner. Import it for its side effect.
package lgomega

import (
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/onsi/gomega"
)

func init() {
	gomega.RegisterFailHandler(failHandler)
}

var (
	frameOffset  = regexp.MustCompile(` \+0x[0-9a-f]+$`)
	testingFrame = regexp.MustCompile(`^testing\.tRunner|^created by testing\.`)
)

// failHandler panics so that the test stops where the assertion failed. The
// testing package reports the panic with the trimmed stack below.
func failHandler(message string, callerSkip ...int) {
	skip := 2
	if len(callerSkip) > 0 {
		skip += callerSkip[0]
	}
	panic(fmt.Sprintf("\n%s\n%s", callerStack(skip), message))
}

// callerStack renders debug.Stack without the first skip frames and the
// frames belonging to the testing runtime.
func callerStack(skip int) string {
	lines := strings.Split(strings.TrimSpace(string(debug.Stack())), "\n")
	// The first line is the goroutine header, then each frame is a
	// function line followed by a file line.
	if len(lines) > 1+2*skip {
		lines = lines[1+2*skip:]
	}
	kept := make([]string, 0, len(lines))
	for i := 0; i+1 < len(lines); i += 2 {
		if testingFrame.MatchString(lines[i]) {
			continue
		}
		kept = append(kept, frameOffset.ReplaceAllString(lines[i], ""), frameOffset.ReplaceAllString(lines[i+1], ""))
	}
	return strings.Join(kept, "\n")
}
