package main

import (
	"fmt"

	"github.com/urfave/cli"

	"globalpatents/contract"
	"globalpatents/ledger"
	"globalpatents/model"
	"globalpatents/seed"
)

func runInit(c *cli.Context) error {
	return transact(c, func(st ledger.State) (interface{}, error) {
		if err := contract.NewParticipantRegistry(st).Initialize(); err != nil {
			return nil, err
		}
		indexes := map[string][]string{}
		for _, r := range model.Roles {
			indexes[r.IndexKey()] = []string{}
		}
		return indexes, nil
	})
}

func runRegister(c *cli.Context) error {
	roleName, err := requireFlag(c, "role")
	if err != nil {
		return err
	}
	role, err := model.ParseRole(roleName)
	if err != nil {
		return err
	}
	id, err := requireFlag(c, "id")
	if err != nil {
		return err
	}
	company, err := requireFlag(c, "company")
	if err != nil {
		return err
	}
	return transact(c, func(st ledger.State) (interface{}, error) {
		return contract.NewParticipantRegistry(st).Register(role, id, company)
	})
}

func runParticipants(c *cli.Context) error {
	roleName, err := requireArg(c, "ROLE")
	if err != nil {
		return err
	}
	role, err := model.ParseRole(roleName)
	if err != nil {
		return err
	}
	return transact(c, func(st ledger.State) (interface{}, error) {
		return contract.NewParticipantRegistry(st).ListByRole(role)
	})
}

func runRead(c *cli.Context) error {
	key, err := requireArg(c, "KEY")
	if err != nil {
		return err
	}
	m := getMetadata(c)
	var out string
	err = m.store.Update(func(st ledger.State) error {
		out, err = contract.ReadState(st, key)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(m.w, out)
	return nil
}

func runSeed(c *cli.Context) error {
	file, err := requireFlag(c, "file")
	if err != nil {
		return err
	}
	f, err := seed.Load(file)
	if err != nil {
		return err
	}
	m := getMetadata(c)

	if c.Bool("init") {
		err := m.store.Update(func(st ledger.State) error {
			reg := contract.NewParticipantRegistry(st)
			if _, err := reg.Index(model.RoleOwner); contract.KindOf(err) != contract.KindRegistryNotInitialized {
				return err
			}
			return reg.Initialize()
		})
		if err != nil {
			return err
		}
	}

	report, err := seed.Apply(m.store, f, now())
	if err != nil {
		return err
	}
	return printJson(m.w, report)
}
