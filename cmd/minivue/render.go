package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/delaneyj/minivue/dom"
	"github.com/urfave/cli/v3"
)

var stdout io.Writer = os.Stdout

func render(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	return a.print(stdout, cmd.Bool(documentKey))
}

func (a *app) print(w io.Writer, document bool) error {
	if document {
		dom.RenderDocument(w, a.doc)
	} else {
		dom.Render(w, a.vm.El())
	}
	_, err := fmt.Fprintln(w)
	return err
}
