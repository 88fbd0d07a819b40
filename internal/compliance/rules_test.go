package compliance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moeenhq/diwan/internal/compliance"
	"github.com/moeenhq/diwan/internal/domain"
)

func TestEvaluateFullAttireIsClean(t *testing.T) {
	d := domain.AttireDetection{Thobe: true, Bisht: true, ShemaghOrGhutra: true}
	vs := compliance.Evaluate("Alice", domain.RoleChair, d, time.Now())
	assert.Empty(t, vs)
}

func TestEvaluateChairMissingBisht(t *testing.T) {
	now := time.Now()
	d := domain.AttireDetection{Thobe: true, ShemaghOrGhutra: true}

	vs := compliance.Evaluate("Alice", domain.RoleChair, d, now)
	require.Len(t, vs, 1)
	assert.Equal(t, domain.ViolationBisht, vs[0].Type)
	assert.Equal(t, domain.SeverityHigh, vs[0].Severity)
	assert.Equal(t, "Alice", vs[0].Participant)
	assert.Equal(t, domain.RoleChair, vs[0].Role)
	assert.Equal(t, now, vs[0].Timestamp)
	assert.NotEmpty(t, vs[0].Message)
}

func TestEvaluatePartyNeedsNoBisht(t *testing.T) {
	d := domain.AttireDetection{Thobe: true, ShemaghOrGhutra: true}
	vs := compliance.Evaluate("Bob", domain.RoleParty, d, time.Now())
	assert.Empty(t, vs)
}

func TestEvaluateNothingWornRaisesPerItem(t *testing.T) {
	vs := compliance.Evaluate("Carol", domain.RoleJudge, domain.AttireDetection{}, time.Now())
	require.Len(t, vs, 3)
	types := map[domain.ViolationType]bool{}
	for _, v := range vs {
		types[v.Type] = true
	}
	assert.True(t, types[domain.ViolationThobe])
	assert.True(t, types[domain.ViolationBisht])
	assert.True(t, types[domain.ViolationHeadwear])
}

func TestCameraOffViolation(t *testing.T) {
	now := time.Now()
	v := compliance.CameraOffViolation("Bob", domain.RoleParty, now)
	assert.Equal(t, domain.ViolationCameraOff, v.Type)
	assert.Equal(t, "Bob", v.Participant)
	assert.Equal(t, now, v.Timestamp)
}

func TestResultReasonByRole(t *testing.T) {
	tests := []struct {
		name      string
		role      domain.Role
		detection domain.AttireDetection
		compliant bool
		reason    string
	}{
		{
			name:      "judicial role fully dressed",
			role:      domain.RoleLawyer,
			detection: domain.AttireDetection{Thobe: true, Bisht: true, ShemaghOrGhutra: true},
			compliant: true,
			reason:    "all_items_present",
		},
		{
			name:      "judicial role missing bisht",
			role:      domain.RoleLawyer,
			detection: domain.AttireDetection{Thobe: true, ShemaghOrGhutra: true},
			compliant: false,
			reason:    "missing_judicial_attire",
		},
		{
			name:      "party missing headwear",
			role:      domain.RoleParty,
			detection: domain.AttireDetection{Thobe: true},
			compliant: false,
			reason:    "missing_formal_attire",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := compliance.Result("X", tc.role, tc.detection, time.Now())
			assert.True(t, res.Success)
			assert.Equal(t, tc.compliant, res.Compliant)
			assert.Equal(t, tc.reason, res.Reason)
			if !tc.compliant {
				assert.NotEmpty(t, res.Warnings)
				assert.NotEmpty(t, res.Missing)
			}
		})
	}
}
