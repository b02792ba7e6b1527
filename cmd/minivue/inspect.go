package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/delaneyj/minivue/reactive"
	"github.com/delaneyj/minivue/surface"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

func inspect(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	a.inspect(stdout)
	return nil
}

func (a *app) inspect(w io.Writer) {
	result := a.vm.Compiled()

	sites := tablewriter.NewWriter(w)
	sites.SetHeader([]string{"#", "kind", "node", "key", "deps", "value"})
	for i, s := range result.Sites {
		deps, value := "", ""
		if s.Binding != nil {
			ids := make([]string, 0, len(s.Binding.Deps()))
			for _, dep := range s.Binding.Deps() {
				ids = append(ids, shortID(dep.ID()))
			}
			deps = strings.Join(ids, " ")
			value = reactive.Format(s.Binding.Last())
		}
		sites.Append([]string{
			fmt.Sprint(i + 1),
			string(s.Kind),
			describe(s.Node),
			s.Key,
			deps,
			value,
		})
	}
	sites.SetFooter([]string{
		"", "",
		fmt.Sprintf("%s bindings", humanize.Comma(int64(len(result.Bindings())))),
		fmt.Sprintf("%s events", humanize.Comma(int64(result.Events()))),
		fmt.Sprintf("%s skipped", humanize.Comma(int64(result.Skipped))),
		"",
	})
	sites.Render()

	slots := tablewriter.NewWriter(w)
	slots.SetHeader([]string{"slot", "id", "listeners"})
	total := 0
	walkSlots(a.vm.Root(), func(s *reactive.Slot) {
		total += s.Listeners()
		slots.Append([]string{
			s.Path(),
			shortID(s.ID()),
			humanize.Comma(int64(s.Listeners())),
		})
	})
	slots.SetFooter([]string{"", "total", humanize.Comma(int64(total))})
	slots.Render()
}

// shortID is the high half of a slot id. The deps column of the sites
// table refers to rows of the slot table by it.
func shortID(id uint64) string {
	return fmt.Sprintf("%08x", id>>32)
}

// walkSlots visits every slot below o in key order.
func walkSlots(o *reactive.Object, fn func(*reactive.Slot)) {
	o.Store().Untracked(func() any {
		for _, k := range o.Keys() {
			s, _ := o.Slot(k)
			fn(s)
			if child, ok := o.Get(k).(*reactive.Object); ok {
				walkSlots(child, fn)
			}
		}
		return nil
	})
}

func describe(n surface.Node) string {
	switch n.Kind() {
	case surface.KindText:
		return "#text"
	case surface.KindElement:
		var sb strings.Builder
		sb.WriteString(n.Tag())
		if id, ok := n.Attr("id"); ok && id != "" {
			sb.WriteString("#" + id)
		}
		if class, ok := n.Attr("class"); ok && class != "" {
			sb.WriteString("." + strings.Join(strings.Fields(class), "."))
		}
		return sb.String()
	}
	return n.Kind().String()
}
