// Command patentctl runs global patents transactions against a local ledger
// database, one ledger transaction per command.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hyperledger/fabric/common/flogging"
	"github.com/urfave/cli"

	"globalpatents/ledger"
)

type metadata struct {
	store   *ledger.Store
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "patentctl"
	app.Usage = "run global patents transactions against a local ledger"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "datadir, d",
			Value: "patents.leveldb",
			Usage: " ledger database `DIR`",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " debug logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "create (or reset) the four empty registry indexes",
			Action: runInit,
		},
		{
			Name:      "register",
			Usage:     "register a participant",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "role, r",
					Value: "",
					Usage: "*participant `ROLE` [owner|verifier|publisher|auditor]",
				},
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*participant `ID`",
				},
				cli.StringFlag{
					Name:  "company, c",
					Value: "",
					Usage: "*company `NAME`",
				},
			},
			Action: runRegister,
		},
		{
			Name:      "create",
			Usage:     "file a new patent request",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*patent request `ID`",
				},
				cli.StringSliceFlag{
					Name:  "owner, o",
					Usage: "*owner `ID` (repeatable)",
				},
				cli.StringFlag{
					Name:  "verifier, V",
					Value: "",
					Usage: "*verifier `ID`",
				},
				cli.StringFlag{
					Name:  "industry",
					Value: "",
					Usage: " patent industry `STRING`",
				},
				cli.StringFlag{
					Name:  "prior-artifacts",
					Value: "",
					Usage: " prior artifacts `STRING`",
				},
				cli.StringFlag{
					Name:  "details",
					Value: "",
					Usage: " details `STRING`",
				},
			},
			Action: runCreate,
		},
		{
			Name:      "verify",
			Usage:     "verify a new patent request and assign its publisher",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*patent request `ID`",
				},
				cli.StringSliceFlag{
					Name:  "owner, o",
					Usage: "*owner `ID` (repeatable)",
				},
				cli.StringFlag{
					Name:  "verifier, V",
					Value: "",
					Usage: "*verifier `ID`",
				},
				cli.StringFlag{
					Name:  "publisher, p",
					Value: "",
					Usage: "*publisher `ID`",
				},
			},
			Action: runVerify,
		},
		{
			Name:      "reject",
			Usage:     "reject a new patent request",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "id, i",
					Value: "",
					Usage: "*patent request `ID`",
				},
				cli.StringFlag{
					Name:  "verifier, V",
					Value: "",
					Usage: "*verifier `ID`",
				},
				cli.StringFlag{
					Name:  "reason",
					Value: "",
					Usage: " rejection `REASON`",
				},
			},
			Action: runReject,
		},
		{
			Name:      "start-publishing",
			Usage:     "begin publishing a verified patent request",
			ArgsUsage: "\n   (* = required)",
			Flags:     publisherFlags(),
			Action:    runStartPublishing,
		},
		{
			Name:      "complete-publishing",
			Usage:     "mark a patent request as published",
			ArgsUsage: "\n   (* = required)",
			Flags:     publisherFlags(),
			Action:    runCompletePublishing,
		},
		{
			Name:      "read",
			Usage:     "print the JSON stored at a ledger key",
			ArgsUsage: "KEY",
			Action:    runRead,
		},
		{
			Name:      "participants",
			Usage:     "list the participants registered under a role",
			ArgsUsage: "ROLE",
			Action:    runParticipants,
		},
		{
			Name:      "patents",
			Usage:     "list the patent requests a participant is associated with",
			ArgsUsage: "PARTICIPANT-ID",
			Action:    runPatents,
		},
		{
			Name:      "seed",
			Usage:     "bulk-load members and assets from a JSON or YAML file",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*seed `FILE`",
				},
				cli.BoolFlag{
					Name:  "init",
					Usage: " initialize the registry first if it does not exist",
				},
			},
			Action: runSeed,
		},
	}

	app.Before = func(c *cli.Context) error {
		// no ledger needed just to print help
		switch c.Args().Get(0) {
		case "", "help", "h":
			return nil
		}

		verbose := c.GlobalBool("verbose")
		if verbose {
			flogging.ActivateSpec("debug")
		} else {
			flogging.ActivateSpec("warning")
		}

		dir := c.GlobalString("datadir")
		if dir == "" {
			return fmt.Errorf("datadir cannot be empty")
		}
		store, err := ledger.Open(dir)
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(c.App.ErrWriter, "ledger: %q\n", dir)
		}

		c.App.Metadata["config"] = &metadata{
			store:   store,
			verbose: verbose,
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}
	app.After = func(c *cli.Context) error {
		if m, ok := c.App.Metadata["config"].(*metadata); ok && m.store != nil {
			return m.store.Close()
		}
		return nil
	}
	return app
}

func publisherFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "id, i",
			Value: "",
			Usage: "*patent request `ID`",
		},
		cli.StringFlag{
			Name:  "publisher, p",
			Value: "",
			Usage: "*publisher `ID`",
		},
	}
}
