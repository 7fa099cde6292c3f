package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli"

	"globalpatents/ledger"
)

func getMetadata(c *cli.Context) *metadata {
	return c.App.Metadata["config"].(*metadata)
}

// transact runs fn in one ledger transaction and prints its result as JSON.
func transact(c *cli.Context, fn func(ledger.State) (interface{}, error)) error {
	m := getMetadata(c)
	var result interface{}
	err := m.store.Update(func(st ledger.State) error {
		var err error
		result, err = fn(st)
		return err
	})
	if err != nil {
		return err
	}
	return printJson(m.w, result)
}

func requireFlag(c *cli.Context, name string) (string, error) {
	v := c.String(name)
	if v == "" {
		return "", fmt.Errorf("missing required flag --%s", name)
	}
	return v, nil
}

func requireArg(c *cli.Context, what string) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one %s argument", what)
	}
	return c.Args().Get(0), nil
}

func printJson(handle io.Writer, message interface{}) error {
	b, err := json.MarshalIndent(message, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
