// Package open hands a transcript file to the user's editor.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"agentview/internal/session"
)

// Session opens the descriptor's backing file in $EDITOR, jumping to
// lineNum when the editor supports it (pass 0 or less for the top).
func Session(desc session.Descriptor, lineNum int) error {
	if _, err := os.Stat(desc.FilePath); err != nil {
		return fmt.Errorf("file not found: %s", desc.FilePath)
	}
	if lineNum < 1 {
		lineNum = 1
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	return openInEditor(editor, desc.FilePath, lineNum)
}

func openInEditor(editor, filePath string, lineNum int) error {
	var cmd *exec.Cmd

	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		cmd = exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		cmd = exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		cmd = exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		cmd = exec.Command(editor, filePath)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
