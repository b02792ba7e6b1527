package dom_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/delaneyj/minivue/dom"
	"github.com/delaneyj/minivue/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html><head><title>t</title></head><body>
<div id="app" class="root main">
  <p class="greeting">Hello <b>{{ name }}</b></p>
  <input id="field" value="start">
  <button v-on:click="go">Go</button>
</div>
</body></html>`

func parse(t *testing.T, s string) *dom.Document {
	t.Helper()
	d, err := dom.ParseString(s)
	require.NoError(t, err)
	return d
}

func TestQuery(t *testing.T) {
	d := parse(t, page)

	cases := []struct {
		selector string
		tag      string
		found    bool
	}{
		{"#app", "div", true},
		{"div#app", "div", true},
		{".greeting", "p", true},
		{"div.root.main", "div", true},
		{"div.root.other", "", false},
		{"button", "button", true},
		{"#missing", "", false},
		{"div p", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.selector, func(t *testing.T) {
			n, ok := d.Query(tc.selector)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.tag, n.Tag())
			}
		})
	}

	assert.Len(t, d.QueryAll("p"), 1)
	app := d.QueryNode("#app")
	require.NotNil(t, app)
	assert.NotNil(t, app.Query("b"))
	assert.Nil(t, app.Query("#app"))
}

func TestParseKeepsDirectiveAttributes(t *testing.T) {
	d := parse(t, page)
	btn := d.QueryNode("button")
	require.NotNil(t, btn)

	v, ok := btn.Attr("v-on:click")
	assert.True(t, ok)
	assert.Equal(t, "go", v)
}

func TestTextAndValue(t *testing.T) {
	d := parse(t, page)

	p := d.QueryNode("p")
	assert.Equal(t, "Hello {{ name }}", p.Text())

	in := d.QueryNode("#field")
	assert.Equal(t, "start", in.Value())
	in.SetValue("next")
	assert.Equal(t, "next", in.Value())
	v, _ := in.Attr("value")
	assert.Equal(t, "start", v)

	p.SetText("plain")
	assert.Equal(t, "<p class=\"greeting\">plain</p>", p.OuterHTML())
}

func TestAppendFragmentMovesChildren(t *testing.T) {
	d := dom.NewDocument()
	parent := d.CreateElement("div")
	frag := d.CreateFragment()

	a, b := dom.NewText("a"), dom.NewElement("span")
	parent.AppendChild(a)
	parent.AppendChild(b)

	for c := parent.FirstChild(); c != nil; c = parent.FirstChild() {
		frag.AppendChild(c)
	}
	assert.Empty(t, parent.Children())
	assert.Len(t, frag.Children(), 2)
	assert.Equal(t, frag, a.Parent())

	parent.AppendChild(frag)
	assert.Empty(t, frag.Children())
	assert.Equal(t, "<div>a<span></span></div>", parent.OuterHTML())
	assert.Equal(t, parent, b.Parent())
}

func TestDispatchPhases(t *testing.T) {
	d := parse(t, `<div id="outer"><div id="inner"><button id="btn">x</button></div></div>`)
	outer, inner, btn := d.QueryNode("#outer"), d.QueryNode("#inner"), d.QueryNode("#btn")

	var order []string
	add := func(n *dom.Node, name string, capture bool) {
		n.AddListener("click", func(ev *surface.Event) {
			order = append(order, name)
			assert.Equal(t, btn, ev.Target)
			assert.Equal(t, n, ev.CurrentTarget)
		}, capture)
	}
	add(outer, "outer-bubble", false)
	add(outer, "outer-capture", true)
	add(inner, "inner-bubble", false)
	add(inner, "inner-capture", true)
	add(btn, "btn-bubble", false)
	add(btn, "btn-capture", true)

	dom.Click(btn)
	assert.Equal(t, []string{
		"outer-capture", "inner-capture",
		"btn-capture", "btn-bubble",
		"inner-bubble", "outer-bubble",
	}, order)
}

func TestDispatchStopPropagation(t *testing.T) {
	d := parse(t, `<div id="outer"><button id="btn">x</button></div>`)
	outer, btn := d.QueryNode("#outer"), d.QueryNode("#btn")

	var order []string
	outer.AddListener("click", func(ev *surface.Event) {
		order = append(order, "outer")
		ev.StopPropagation()
	}, true)
	btn.AddListener("click", func(*surface.Event) {
		order = append(order, "btn")
	}, false)

	dom.Click(btn)
	assert.Equal(t, []string{"outer"}, order)
}

func TestInputDispatchesSignal(t *testing.T) {
	d := parse(t, `<input id="f">`)
	in := d.QueryNode("#f")

	var got []string
	in.AddListener("input", func(ev *surface.Event) {
		got = append(got, ev.Target.Value())
	}, false)
	dom.Input(in, "typed")
	dom.Change(in, "changed")

	assert.Equal(t, []string{"typed"}, got)
	assert.Equal(t, "changed", in.Value())
	assert.Equal(t, 1, in.ListenerCount("input"))
}

func TestRenderEscapes(t *testing.T) {
	n := dom.NewElement("a", surface.Attr{Name: "title", Value: `say "hi" & <bye>`})
	n.AppendChild(dom.NewText("1 < 2 & 'x'"))
	assert.Equal(t,
		`<a title="say &quot;hi&quot; &amp; &lt;bye&gt;">1 &lt; 2 &amp; &#39;x&#39;</a>`,
		n.OuterHTML())
}

func TestRenderLiveValuesAndVoidElements(t *testing.T) {
	d := parse(t, `<div id="app"><input value="old"><br><textarea>seed</textarea><script>if (a < b) {}</script></div>`)
	app := d.QueryNode("#app")
	d.QueryNode("input").SetValue("new")
	d.QueryNode("textarea").SetValue("typed")

	assert.Equal(t,
		`<input value="new"><br><textarea>typed</textarea><script>if (a < b) {}</script>`,
		app.InnerHTML())
}

func TestRenderDocument(t *testing.T) {
	d := parse(t, page)
	var buf bytes.Buffer
	dom.RenderDocument(&buf, d)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html><html>"))
	assert.Contains(t, out, `<div id="app" class="root main">`)
}

func TestParseFragment(t *testing.T) {
	frag, err := dom.ParseFragment(strings.NewReader(`<p>a</p><p>b</p>`))
	require.NoError(t, err)
	assert.Equal(t, surface.KindFragment, frag.Kind())
	assert.Len(t, frag.Children(), 2)
	assert.Equal(t, "ab", frag.Text())
}

func TestParseFragmentKeepsDirectives(t *testing.T) {
	frag, err := dom.ParseFragment(strings.NewReader(`<input v-name><button v-on:click="go">x</button>`))
	require.NoError(t, err)
	require.Len(t, frag.Children(), 2)
	in := frag.Children()[0]
	assert.Equal(t, "input", in.Tag())
	_, ok := in.Attr("v-name")
	assert.True(t, ok)
	assert.Same(t, frag, frag.Children()[1].Parent())
}

func TestParseMarkup(t *testing.T) {
	d, err := dom.ParseMarkup(strings.NewReader(`<div id="app"><p>{{ x }}</p></div>`))
	require.NoError(t, err)
	assert.NotNil(t, d.QueryNode("#app"))
	assert.Nil(t, d.QueryNode("body"))

	var buf bytes.Buffer
	dom.RenderDocument(&buf, d)
	assert.Equal(t, `<div id="app"><p>{{ x }}</p></div>`, buf.String())
}
