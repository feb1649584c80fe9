package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/l1jgo/statecore/internal/app"
	"github.com/l1jgo/statecore/internal/config"
	"github.com/l1jgo/statecore/internal/core/event"
	"github.com/l1jgo/statecore/internal/platform"
	"github.com/l1jgo/statecore/internal/platform/headless"
)

type document struct {
	title    string
	body     []string
	revision int
}

// edited is emitted by a document for every appended word.
type edited struct {
	word     string
	revision int
}

type statusBar struct {
	text  string
	width float32
}

type wordCount struct {
	words int
	cells int
}

const statusFontSize = 14

type demo struct {
	doc    app.Handle[document]
	status app.Handle[statusBar]
	count  app.Handle[wordCount]
	window *app.Task[app.WindowHandle[document]]

	finished chan struct{}
}

// buildDemo wires a document to a status bar that observes it and a word
// counter that subscribes to its edits, and opens a window on it.
func buildDemo(cx *app.AppContext, wcfg config.WindowConfig, log *zap.Logger) *demo {
	d := &demo{finished: make(chan struct{})}

	app.OnLifecycle(cx, func(_ *app.AppContext, ev event.WindowClosed) {
		log.Info("window closed", zap.Uint64("window", uint64(ev.Window)))
	})

	d.doc = app.Entity(cx, func(*app.ModelContext[document]) document {
		return document{title: "untitled"}
	})

	d.status = app.Entity(cx, func(mc *app.ModelContext[statusBar]) statusBar {
		app.Observe(mc, d.doc, func(s *statusBar, doc app.Handle[document], mc *app.ModelContext[statusBar]) {
			s.text = app.UpdateEntity(mc, doc, func(doc *document, _ *app.ModelContext[document]) string {
				return fmt.Sprintf("%s · rev %d · %s", doc.title, doc.revision, strings.Join(doc.body, " "))
			})
			s.width = mc.App().TextSystem().Measure(s.text, statusFontSize).Width
		})
		return statusBar{text: "ready"}
	})

	d.count = app.Entity(cx, func(mc *app.ModelContext[wordCount]) wordCount {
		app.Subscribe(mc, d.doc, func(c *wordCount, _ app.Handle[document], ev edited, _ *app.ModelContext[wordCount]) {
			c.words++
			c.cells += headless.Cells(ev.word)
		})
		return wordCount{}
	})

	d.window = app.OpenWindow(cx, platform.WindowOptions{
		Title:     wcfg.Title,
		Width:     wcfg.Width,
		Height:    wcfg.Height,
		Resizable: true,
	}, func(wc *app.WindowContext) app.RootView[document] {
		return app.NewRootView(d.doc)
	})
	return d
}

// append adds a word to the document and returns the new revision.
func (d *demo) append(cx app.Context, word string) int {
	return app.UpdateEntity(cx, d.doc, func(doc *document, mc *app.ModelContext[document]) int {
		doc.body = append(doc.body, word)
		doc.revision++
		mc.Emit(edited{word: word, revision: doc.revision})
		mc.Notify()
		return doc.revision
	})
}

func (d *demo) summary(cx app.Context) string {
	status := app.UpdateEntity(cx, d.status, func(s *statusBar, _ *app.ModelContext[statusBar]) string {
		return fmt.Sprintf("%q (%.0fpx)", s.text, s.width)
	})
	count := app.UpdateEntity(cx, d.count, func(c *wordCount, _ *app.ModelContext[wordCount]) string {
		return fmt.Sprintf("%d words, %d cells", c.words, c.cells)
	})
	return status + ", " + count
}
