package inspector

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/cpunch-go/luadecompy/internal/decompiler"
	"github.com/cpunch-go/luadecompy/internal/disasm"
)

// TUI is the full-screen text interface for the inspector, grounded
// on the teacher's debugger TUI but repointed at a static prototype
// tree instead of live VM/memory/stack state.
type TUI struct {
	Session *Session
	App     *tview.Application
	Pages   *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	ProtoTreeView   *tview.TextView
	DisassemblyView *tview.TextView
	ConstantsView   *tview.TextView
	LocalsView      *tview.TextView
	DecompileView   *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI creates a new text user interface over an inspector session.
func NewTUI(session *Session) *TUI {
	tui := &TUI{Session: session, App: tview.NewApplication()}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

func (t *TUI) initializeViews() {
	t.ProtoTreeView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.ProtoTreeView.SetBorder(true).SetTitle(" Prototypes ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.ConstantsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.ConstantsView.SetBorder(true).SetTitle(" Constants ")

	t.LocalsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.LocalsView.SetBorder(true).SetTitle(" Locals ")

	t.DecompileView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DecompileView.SetBorder(true).SetTitle(" Decompiled Source ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(t.DecompileView, 0, 2, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.ProtoTreeView, 0, 1, false).
		AddItem(t.ConstantsView, 0, 1, false).
		AddItem(t.LocalsView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF2:
			t.executeCommand("up")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Session.Output.Reset()

	err := t.Session.ExecuteCommand(cmd)
	output := t.Session.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	t.RefreshAll()
}

// WriteOutput writes to the output view.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text)) // Ignore write errors in TUI
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels.
func (t *TUI) RefreshAll() {
	t.UpdateProtoTreeView()
	t.UpdateDisassemblyView()
	t.UpdateConstantsView()
	t.UpdateLocalsView()
	t.UpdateDecompileView()
	t.App.Draw()
}

// UpdateProtoTreeView shows the selected prototype's breadcrumb and
// its direct children.
func (t *TUI) UpdateProtoTreeView() {
	t.ProtoTreeView.Clear()

	p, err := t.Session.Selected()
	if err != nil {
		t.ProtoTreeView.SetText(fmt.Sprintf("[red]%v[white]", err))
		return
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]selected: %s[white]", t.Session.PathString()))
	lines = append(lines, fmt.Sprintf("lines %d-%d, %d params", p.FirstLine, p.LastLine, p.NumParams))
	lines = append(lines, "")

	if len(p.Protos) == 0 {
		lines = append(lines, "(no child prototypes)")
	} else {
		lines = append(lines, "children:")
		for i, child := range p.Protos {
			lines = append(lines, fmt.Sprintf("  %d: lines %d-%d", i, child.FirstLine, child.LastLine))
		}
	}

	t.ProtoTreeView.SetText(strings.Join(lines, "\n"))
}

// UpdateDisassemblyView shows disassembly context around the cursor.
func (t *TUI) UpdateDisassemblyView() {
	t.DisassemblyView.Clear()

	p, err := t.Session.Selected()
	if err != nil {
		t.DisassemblyView.SetText(fmt.Sprintf("[red]%v[white]", err))
		return
	}

	lines := disasm.Disassemble(p)
	var out []string
	start := t.Session.PC - DisasmContextLines
	if start < 0 {
		start = 0
	}
	end := t.Session.PC + DisasmContextLines
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	for i := start; i <= end && i >= 0 && i < len(lines); i++ {
		marker, color := "  ", "white"
		if i == t.Session.PC {
			marker, color = "->", "yellow"
		}
		out = append(out, fmt.Sprintf("[%s]%s [%4d] %s[white]", color, marker, lines[i].PC, lines[i].Text))
	}

	t.DisassemblyView.SetText(strings.Join(out, "\n"))
}

// UpdateConstantsView shows the selected prototype's constant pool.
func (t *TUI) UpdateConstantsView() {
	t.ConstantsView.Clear()

	p, err := t.Session.Selected()
	if err != nil {
		t.ConstantsView.SetText(fmt.Sprintf("[red]%v[white]", err))
		return
	}

	t.ConstantsView.SetText(disasm.Constants(p))
}

// UpdateLocalsView shows the selected prototype's debug-info locals.
func (t *TUI) UpdateLocalsView() {
	t.LocalsView.Clear()

	p, err := t.Session.Selected()
	if err != nil {
		t.LocalsView.SetText(fmt.Sprintf("[red]%v[white]", err))
		return
	}

	if len(p.Locals) == 0 {
		t.LocalsView.SetText("(no debug-info locals)")
		return
	}

	var lines []string
	for i, l := range p.Locals {
		lines = append(lines, fmt.Sprintf("%d: %s (pc %d-%d)", i, l.Name, l.StartPC, l.EndPC))
	}
	t.LocalsView.SetText(strings.Join(lines, "\n"))
}

// UpdateDecompileView runs the decompiler over the selected prototype
// and shows the reconstructed source.
func (t *TUI) UpdateDecompileView() {
	t.DecompileView.Clear()

	p, err := t.Session.Selected()
	if err != nil {
		t.DecompileView.SetText(fmt.Sprintf("[red]%v[white]", err))
		return
	}

	out, err := decompiler.New(p, t.Session.Options, len(t.Session.Path)).Decompile()
	if err != nil {
		t.DecompileView.SetText(fmt.Sprintf("[red]decompile failed: %v[white]", err))
		return
	}

	t.DecompileView.SetText(out)
}

// Run starts the TUI application.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]Lua bytecode inspector[white]\n")
	t.WriteOutput("Press F1 for help, F2 to go up a prototype level\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}
