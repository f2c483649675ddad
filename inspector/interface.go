package inspector

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI runs the line-oriented inspector REPL.
func RunCLI(s *Session) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("(luadecompy:%s) ", s.PathString())

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting inspector...")
			break
		}

		if err := s.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := s.GetOutput(); output != "" {
			fmt.Print(output)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// RunTUI runs the full-screen TUI inspector.
func RunTUI(s *Session) error {
	tui := NewTUI(s)
	return tui.Run()
}
