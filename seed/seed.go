// Package seed bulk-loads participants and patent requests from a member
// list file, skipping ids the ledger already knows about.
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"globalpatents/contract"
	"globalpatents/ledger"
	"globalpatents/model"

	"github.com/hyperledger/fabric/common/flogging"
	"gopkg.in/yaml.v3"
)

var logger = flogging.MustGetLogger("globalpatents.seed")

// File is the seed document: members are registered first, then assets are
// filed as patent requests.
type File struct {
	Members []Member `json:"members" yaml:"members"`
	Assets  []Asset  `json:"assets" yaml:"assets"`
}

// Member is one participant to register. Type is the role name, e.g. "Owner".
type Member struct {
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	CompanyName string `json:"companyName" yaml:"companyName"`
}

// Asset is one patent request to file.
type Asset struct {
	ID             string   `json:"id" yaml:"id"`
	Owners         []string `json:"owners" yaml:"owners"`
	Verifier       string   `json:"verifier" yaml:"verifier"`
	PatentIndustry string   `json:"patentIndustry" yaml:"patentIndustry"`
	PriorArtifacts string   `json:"priorArtifacts" yaml:"priorArtifacts"`
	Details        string   `json:"details" yaml:"details"`
}

// Load reads a seed file, decoding YAML for .yaml/.yml and JSON otherwise.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &f)
	default:
		err = json.Unmarshal(raw, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode seed file '%s': %w", path, err)
	}
	return &f, nil
}

// Updater runs fn in one ledger transaction, committing only if fn succeeds.
// *ledger.Store satisfies it.
type Updater interface {
	Update(fn func(ledger.State) error) error
}

// Failure records an item that could not be applied.
type Failure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Report summarizes one Apply run.
type Report struct {
	Registered []string  `json:"registered"`
	Created    []string  `json:"created"`
	Skipped    []string  `json:"skipped"`
	Failures   []Failure `json:"failures"`
}

func newReport() *Report {
	return &Report{Registered: []string{}, Created: []string{}, Skipped: []string{}, Failures: []Failure{}}
}

// Apply registers every member and files every asset, each in its own
// transaction. Members whose id is already in any registry index and assets
// whose id is already referenced by an owner are skipped. Per-item failures
// are collected in the report; only a failure to read the registry aborts.
func Apply(u Updater, f *File, now time.Time) (*Report, error) {
	knownMembers, knownPatents, err := snapshot(u)
	if err != nil {
		return nil, err
	}
	report := newReport()

	for _, m := range f.Members {
		if knownMembers[m.ID] {
			logger.Warningf("Member '%s' already exists. Skipping.", m.ID)
			report.Skipped = append(report.Skipped, m.ID)
			continue
		}
		role, err := model.ParseRole(m.Type)
		if err != nil {
			report.Failures = append(report.Failures, Failure{ID: m.ID, Error: err.Error()})
			continue
		}
		err = u.Update(func(st ledger.State) error {
			_, err := contract.NewParticipantRegistry(st).Register(role, m.ID, m.CompanyName)
			return err
		})
		if err != nil {
			report.Failures = append(report.Failures, Failure{ID: m.ID, Error: err.Error()})
			continue
		}
		knownMembers[m.ID] = true
		report.Registered = append(report.Registered, m.ID)
	}

	for _, a := range f.Assets {
		if knownPatents[a.ID] {
			logger.Warningf("Patent request '%s' already exists. Skipping.", a.ID)
			report.Skipped = append(report.Skipped, a.ID)
			continue
		}
		err := u.Update(func(st ledger.State) error {
			_, err := contract.NewPatentLifecycle(st).Create(contract.CreateArgs{
				ID:             a.ID,
				OwnerIDs:       a.Owners,
				VerifierID:     a.Verifier,
				Industry:       a.PatentIndustry,
				PriorArtifacts: a.PriorArtifacts,
				Details:        a.Details,
			}, now)
			return err
		})
		if err != nil {
			report.Failures = append(report.Failures, Failure{ID: a.ID, Error: err.Error()})
			continue
		}
		knownPatents[a.ID] = true
		report.Created = append(report.Created, a.ID)
	}

	logger.Infof("Seed applied: %d registered, %d created, %d skipped, %d failed",
		len(report.Registered), len(report.Created), len(report.Skipped), len(report.Failures))
	return report, nil
}

// snapshot collects every indexed participant id and every patent request id
// referenced by an owner.
func snapshot(u Updater) (map[string]bool, map[string]bool, error) {
	members := map[string]bool{}
	patents := map[string]bool{}
	err := u.Update(func(st ledger.State) error {
		reg := contract.NewParticipantRegistry(st)
		for _, role := range model.Roles {
			ids, err := reg.Index(role)
			if err != nil {
				return err
			}
			for _, id := range ids {
				members[id] = true
			}
		}
		owners, err := reg.ListByRole(model.RoleOwner)
		if err != nil {
			return err
		}
		for _, o := range owners {
			for _, id := range o.PatentRequestIDs {
				patents[id] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("read registry: %w", err)
	}
	return members, patents, nil
}
