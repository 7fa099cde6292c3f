package main

import (
	"time"

	"github.com/urfave/cli"

	"globalpatents/contract"
	"globalpatents/ledger"
)

// now stands in for the transaction timestamp a peer would supply.
func now() time.Time {
	return time.Now().UTC()
}

func runCreate(c *cli.Context) error {
	id, err := requireFlag(c, "id")
	if err != nil {
		return err
	}
	verifier, err := requireFlag(c, "verifier")
	if err != nil {
		return err
	}
	args := contract.CreateArgs{
		ID:             id,
		OwnerIDs:       c.StringSlice("owner"),
		VerifierID:     verifier,
		Industry:       c.String("industry"),
		PriorArtifacts: c.String("prior-artifacts"),
		Details:        c.String("details"),
	}
	return transact(c, func(st ledger.State) (interface{}, error) {
		return contract.NewPatentLifecycle(st).Create(args, now())
	})
}

func runVerify(c *cli.Context) error {
	id, err := requireFlag(c, "id")
	if err != nil {
		return err
	}
	verifier, err := requireFlag(c, "verifier")
	if err != nil {
		return err
	}
	publisher, err := requireFlag(c, "publisher")
	if err != nil {
		return err
	}
	owners := c.StringSlice("owner")
	return transact(c, func(st ledger.State) (interface{}, error) {
		return contract.NewPatentLifecycle(st).Verify(id, owners, verifier, publisher, now())
	})
}

func runReject(c *cli.Context) error {
	id, err := requireFlag(c, "id")
	if err != nil {
		return err
	}
	verifier, err := requireFlag(c, "verifier")
	if err != nil {
		return err
	}
	reason := c.String("reason")
	return transact(c, func(st ledger.State) (interface{}, error) {
		return contract.NewPatentLifecycle(st).Reject(id, verifier, reason, now())
	})
}

func runStartPublishing(c *cli.Context) error {
	id, publisher, err := publisherArgs(c)
	if err != nil {
		return err
	}
	return transact(c, func(st ledger.State) (interface{}, error) {
		return contract.NewPatentLifecycle(st).StartPublishing(id, publisher, now())
	})
}

func runCompletePublishing(c *cli.Context) error {
	id, publisher, err := publisherArgs(c)
	if err != nil {
		return err
	}
	return transact(c, func(st ledger.State) (interface{}, error) {
		return contract.NewPatentLifecycle(st).CompletePublishing(id, publisher, now())
	})
}

func runPatents(c *cli.Context) error {
	participantID, err := requireArg(c, "PARTICIPANT-ID")
	if err != nil {
		return err
	}
	return transact(c, func(st ledger.State) (interface{}, error) {
		return contract.NewPatentLifecycle(st).ListByParticipant(participantID)
	})
}

func publisherArgs(c *cli.Context) (string, string, error) {
	id, err := requireFlag(c, "id")
	if err != nil {
		return "", "", err
	}
	publisher, err := requireFlag(c, "publisher")
	if err != nil {
		return "", "", err
	}
	return id, publisher, nil
}
