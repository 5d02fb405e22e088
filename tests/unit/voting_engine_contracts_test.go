package unit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	httptransport "elect/contexts/election-operations/voting-engine/transport/http"
)

func TestContractJSONArtifactsAreValid(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	patterns := []string{
		"contracts/api/v1/*.json",
		"contracts/events/v1/*.json",
	}

	found := 0
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			t.Fatalf("invalid glob pattern %s: %v", pattern, err)
		}
		for _, path := range matches {
			found++
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read %s: %v", path, err)
			}
			var payload any
			if err := json.Unmarshal(data, &payload); err != nil {
				t.Fatalf("invalid json contract file %s: %v", path, err)
			}
		}
	}

	if found == 0 {
		t.Fatalf("no contract json artifacts found")
	}
}

func TestVotingEngineOpenAPIContractIncludesImplementedRoutes(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "contracts", "api", "v1", "voting-engine.openapi.json"))
	if err != nil {
		t.Fatalf("read voting-engine openapi: %v", err)
	}

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode voting-engine openapi: %v", err)
	}

	expected := map[string][]string{
		"/v1/elections/{election_id}":                  {"get"},
		"/v1/elections/{election_id}/votes":            {"post"},
		"/v1/elections/{election_id}/voting-status":    {"get"},
		"/v1/elections/{election_id}/results":          {"get"},
		"/v1/elections/{election_id}/results/finalize": {"post"},
		"/v1/admin/status/tick":                        {"post"},
		"/v1/admin/status/sync":                        {"post"},
	}

	for path, methods := range expected {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Fatalf("missing path in openapi contract: %s", path)
		}
		for _, method := range methods {
			if _, ok := ops[method]; !ok {
				t.Fatalf("missing method %s for path %s in openapi contract", method, path)
			}
		}
	}
}

func TestVotingEngineEventSchemasCoverCanonicalEventSet(t *testing.T) {
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}

	cases := map[string][]string{
		"ballot.accepted":            {"ballot_id", "election_id", "voter_id", "total_vote_count"},
		"election.started":           {"election_id", "from", "to"},
		"election.finished":          {"election_id", "from", "to"},
		"election.results_finalized": {"election_id", "winners", "candidate_count"},
	}

	for eventType, requiredFields := range cases {
		path := filepath.Join(root, "contracts", "events", "v1", eventType+".schema.json")
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read event schema %s: %v", eventType, err)
		}

		var schema map[string]any
		if err := json.Unmarshal(raw, &schema); err != nil {
			t.Fatalf("decode event schema %s: %v", eventType, err)
		}
		if title, _ := schema["title"].(string); title != eventType {
			t.Fatalf("schema %s has wrong title: %q", eventType, title)
		}

		required, _ := schema["required"].([]any)
		for _, key := range requiredFields {
			if !containsAnyString(required, key) {
				t.Fatalf("schema %s missing required payload key %s", eventType, key)
			}
		}
	}
}

func TestBallotAcceptedEnvelopeContractConsistency(t *testing.T) {
	module := seedVotingModule(t,
		runningElection("election-contract-1", 1),
		[]string{"candidate-contract-1"},
		[]string{"voter-contract-1"},
	)

	receipt, err := module.Handler.CastVoteHandler(
		context.Background(),
		"election-contract-1",
		"voter-contract-1",
		httptransport.CastVoteRequest{CandidateIDs: []string{"candidate-contract-1"}},
	)
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}

	outbox, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox: %v", err)
	}
	if len(outbox) == 0 {
		t.Fatalf("expected accepted event in outbox")
	}

	foundAccepted := false
	for _, message := range outbox {
		var envelope map[string]any
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			t.Fatalf("decode outbox payload failed: %v", err)
		}

		eventType, _ := envelope["event_type"].(string)
		if eventType != "ballot.accepted" {
			continue
		}
		foundAccepted = true

		if sourceService, _ := envelope["source_service"].(string); sourceService != "voting-engine" {
			t.Fatalf("invalid source_service for accepted event: %q", sourceService)
		}
		if partitionPath, _ := envelope["partition_key_path"].(string); partitionPath != "election_id" {
			t.Fatalf("invalid partition_key_path for accepted event: %q", partitionPath)
		}
		partitionKey, _ := envelope["partition_key"].(string)
		if partitionKey != "election-contract-1" {
			t.Fatalf("accepted event has invalid partition_key: %q", partitionKey)
		}

		data, _ := envelope["data"].(map[string]any)
		ballotID, _ := data["ballot_id"].(string)
		electionID, _ := data["election_id"].(string)
		voterID, _ := data["voter_id"].(string)

		if strings.TrimSpace(ballotID) == "" || ballotID != receipt.BallotID {
			t.Fatalf("accepted event has invalid ballot_id: %q", ballotID)
		}
		if electionID != "election-contract-1" || electionID != partitionKey {
			t.Fatalf("accepted event has invalid election_id/partition_key: election_id=%q partition_key=%q", electionID, partitionKey)
		}
		if voterID != "voter-contract-1" {
			t.Fatalf("accepted event has invalid voter_id: %q", voterID)
		}
	}

	if !foundAccepted {
		t.Fatalf("expected ballot.accepted event in outbox")
	}
}

func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	current := wd
	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("go.mod not found from %s", wd)
		}
		current = parent
	}
}

func containsAnyString(values []any, target string) bool {
	for _, item := range values {
		if value, ok := item.(string); ok && value == target {
			return true
		}
	}
	return false
}
