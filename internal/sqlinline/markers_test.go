package sqlinline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/infra"
)

func TestStatementsCarryUniqueMarkers(t *testing.T) {
	statements := map[string]string{
		"QListEligibleRecordsTemplate": fmt.Sprintf(QListEligibleRecordsTemplate, `"prompt"`),
		"QPatchRecordGeneration":       QPatchRecordGeneration,
		"QSelectIntegrationToken":      QSelectIntegrationToken,
		"QUpsertIntegrationToken":      QUpsertIntegrationToken,
	}
	seen := make(map[string]string)
	for name, stmt := range statements {
		marker, body, err := infra.ExtractMarker(stmt)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if other, dup := seen[marker]; dup {
			t.Fatalf("%s reuses marker %s from %s", name, marker, other)
		}
		seen[marker] = name
		if strings.TrimSpace(body) == "" {
			t.Fatalf("%s has an empty body", name)
		}
		if strings.Contains(body, "%!") {
			t.Fatalf("%s has a bad format verb: %s", name, body)
		}
	}
}
