package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/xtxerr/flightlog/internal/data"
	"github.com/xtxerr/flightlog/internal/registry"
	"github.com/xtxerr/flightlog/internal/scenario"
)

// browser is the interactive registry explorer started by -browse.
// It navigates one system's channel tree at a time, shell-style.
type browser struct {
	sc  *scenario.Scenario
	sys uint8
	cwd []string
}

func runBrowser(sc *scenario.Scenario) {
	ids := sc.IDs()
	if len(ids) == 0 {
		fmt.Println("no systems loaded")
		return
	}
	b := &browser{sc: sc, sys: ids[0]}

	fmt.Printf("flightlog browser: %d system(s), starting at system %d\n", len(ids), b.sys)
	fmt.Println("commands: ls, cd <group>, cat <channel>, info <channel>, find <word>, sys <id>, summary, exit")

	p := prompt.New(
		b.execute,
		b.complete,
		prompt.OptionLivePrefix(b.prefix),
		prompt.OptionTitle("flightlog"),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && strings.TrimSpace(in) == "exit"
		}),
	)
	p.Run()
}

func (b *browser) prefix() (string, bool) {
	return fmt.Sprintf("sys%d:/%s> ", b.sys, strings.Join(b.cwd, "/")), true
}

func (b *browser) registry() *registry.Registry {
	sys, ok := b.sc.System(b.sys)
	if !ok {
		return nil
	}
	return sys.Registry()
}

// group resolves the current working directory to its tree node.
// Returns nil at the virtual root (above all top-level groups).
func (b *browser) group() *registry.Group {
	reg := b.registry()
	if reg == nil || len(b.cwd) == 0 {
		return nil
	}
	g, ok := reg.Root(b.cwd[0])
	if !ok {
		return nil
	}
	for _, name := range b.cwd[1:] {
		if g, ok = g.Group(name); !ok {
			return nil
		}
	}
	return g
}

func (b *browser) execute(in string) {
	fields := strings.Fields(in)
	if len(fields) == 0 {
		return
	}
	cmd, arg := fields[0], strings.Join(fields[1:], " ")

	switch cmd {
	case "ls":
		b.ls()
	case "cd":
		b.cd(arg)
	case "cat":
		b.cat(arg)
	case "info":
		b.info(arg)
	case "find":
		b.find(arg)
	case "sys":
		b.switchSystem(arg)
	case "summary":
		if sys, ok := b.sc.System(b.sys); ok {
			fmt.Print(sys.Summary())
		}
	case "exit":
		// handled by the exit checker
	case "help":
		fmt.Println("ls, cd <group>, cat <channel>, info <channel>, find <word>, sys <id>, summary, exit")
	default:
		fmt.Printf("unknown command %q (try help)\n", cmd)
	}
}

func (b *browser) ls() {
	reg := b.registry()
	if reg == nil {
		return
	}
	if len(b.cwd) == 0 {
		for _, name := range reg.RootNames() {
			fmt.Printf("%s/\n", name)
		}
		return
	}
	g := b.group()
	if g == nil {
		fmt.Println("path no longer exists")
		b.cwd = nil
		return
	}
	for _, name := range g.GroupNames() {
		fmt.Printf("%s/\n", name)
	}
	for _, name := range g.ChannelNames() {
		ch, _ := g.Channel(name)
		fmt.Printf("%-24s %6d samples  %s\n", name, ch.Len(), ch.Units())
	}
}

func (b *browser) cd(arg string) {
	switch arg {
	case "", "/":
		b.cwd = nil
		return
	case "..":
		if len(b.cwd) > 0 {
			b.cwd = b.cwd[:len(b.cwd)-1]
		}
		return
	}
	next := append(append([]string(nil), b.cwd...), strings.Split(strings.Trim(arg, "/"), "/")...)
	saved := b.cwd
	b.cwd = next
	if b.group() == nil {
		b.cwd = saved
		fmt.Printf("no such group %q\n", arg)
	}
}

// resolve finds a channel by name in the current group, or by full path.
func (b *browser) resolve(arg string) (data.Channel, bool) {
	reg := b.registry()
	if reg == nil || arg == "" {
		return nil, false
	}
	if g := b.group(); g != nil {
		if ch, ok := g.Channel(arg); ok {
			return ch, true
		}
	}
	return reg.Find(arg)
}

func (b *browser) cat(arg string) {
	ch, ok := b.resolve(arg)
	if !ok {
		fmt.Printf("no such channel %q\n", arg)
		return
	}
	const maxRows = 25
	n := 0
	row := func(t float64, v string) {
		if n == maxRows {
			fmt.Printf("... %d more\n", ch.Len()-maxRows)
		}
		if n < maxRows {
			fmt.Printf("%12.3f  %s\n", t, v)
		}
		n++
	}
	switch c := ch.(type) {
	case *data.TimeSeries[float64]:
		c.Each(func(t float64, v float64) { row(t, strconv.FormatFloat(v, 'g', -1, 64)) })
	case *data.TimeSeries[float32]:
		c.Each(func(t float64, v float32) { row(t, strconv.FormatFloat(float64(v), 'g', -1, 32)) })
	case *data.TimeSeries[uint32]:
		c.Each(func(t float64, v uint32) { row(t, strconv.FormatUint(uint64(v), 10)) })
	case *data.TimeSeries[int32]:
		c.Each(func(t float64, v int32) { row(t, strconv.FormatInt(int64(v), 10)) })
	case *data.TimeSeries[uint64]:
		c.Each(func(t float64, v uint64) { row(t, strconv.FormatUint(v, 10)) })
	case *data.EventLog:
		c.Each(func(t float64, label string) { row(t, label) })
	case *data.Param[float64]:
		if v, ok := c.Value(); ok {
			fmt.Println(strconv.FormatFloat(v, 'g', -1, 64))
		}
	case *data.Param[uint32]:
		if v, ok := c.Value(); ok {
			fmt.Println(strconv.FormatUint(uint64(v), 10))
		}
	case *data.Param[uint64]:
		if v, ok := c.Value(); ok {
			fmt.Println(strconv.FormatUint(v, 10))
		}
	default:
		fmt.Printf("%s: %d samples\n", ch.FullPath(), ch.Len())
	}
}

func (b *browser) info(arg string) {
	ch, ok := b.resolve(arg)
	if !ok {
		fmt.Printf("no such channel %q\n", arg)
		return
	}
	fmt.Printf("path:     %s\n", ch.FullPath())
	fmt.Printf("units:    %s\n", orDash(ch.Units()))
	fmt.Printf("samples:  %d\n", ch.Len())
	fmt.Printf("derived:  %v\n", ch.Derived())
	if td, ok := ch.(data.Timed); ok {
		if lo, hi, ok := td.TimeBounds(); ok {
			fmt.Printf("span:     %.3f .. %.3f s\n", lo, hi)
		}
		if td.BadTimestamps() {
			fmt.Println("warning:  unreliable timestamps")
		}
	}
	if ch.EpochStart() > 0 {
		fmt.Printf("epoch:    %d us\n", ch.EpochStart())
	}
}

func (b *browser) find(arg string) {
	reg := b.registry()
	if reg == nil || arg == "" {
		return
	}
	if ch, ok := reg.SearchWord(arg); ok {
		fmt.Printf("%s  (%d samples)\n", ch.FullPath(), ch.Len())
		return
	}
	fmt.Printf("no channel matching %q\n", arg)
}

func (b *browser) switchSystem(arg string) {
	id, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		fmt.Printf("bad system id %q\n", arg)
		return
	}
	if _, ok := b.sc.System(uint8(id)); !ok {
		fmt.Printf("no system %d (have %v)\n", id, b.sc.IDs())
		return
	}
	b.sys = uint8(id)
	b.cwd = nil
}

func (b *browser) complete(d prompt.Document) []prompt.Suggest {
	line := d.TextBeforeCursor()
	fields := strings.Fields(line)

	if len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(line, " ")) {
		cmds := []prompt.Suggest{
			{Text: "ls", Description: "list groups and channels"},
			{Text: "cd", Description: "change group"},
			{Text: "cat", Description: "print channel samples"},
			{Text: "info", Description: "channel metadata"},
			{Text: "find", Description: "search channels by word"},
			{Text: "sys", Description: "switch system"},
			{Text: "summary", Description: "print system summary"},
			{Text: "exit", Description: "leave the browser"},
		}
		return prompt.FilterHasPrefix(cmds, d.GetWordBeforeCursor(), true)
	}

	var sugg []prompt.Suggest
	switch fields[0] {
	case "cd":
		for _, name := range b.childGroups() {
			sugg = append(sugg, prompt.Suggest{Text: name})
		}
		sugg = append(sugg, prompt.Suggest{Text: ".."})
	case "cat", "info":
		for _, name := range b.childChannels() {
			sugg = append(sugg, prompt.Suggest{Text: name})
		}
	case "sys":
		for _, id := range b.sc.IDs() {
			sugg = append(sugg, prompt.Suggest{Text: strconv.Itoa(int(id))})
		}
	}
	return prompt.FilterHasPrefix(sugg, d.GetWordBeforeCursor(), true)
}

func (b *browser) childGroups() []string {
	if len(b.cwd) == 0 {
		if reg := b.registry(); reg != nil {
			return reg.RootNames()
		}
		return nil
	}
	if g := b.group(); g != nil {
		return g.GroupNames()
	}
	return nil
}

func (b *browser) childChannels() []string {
	if g := b.group(); g != nil {
		return g.ChannelNames()
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
