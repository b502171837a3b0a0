package main

import (
	"strings"
	"testing"

	"github.com/example/homecook/pkg/models"
)

type tabler interface{ TableName() string }

func TestPostgresSchema_CoversModels(t *testing.T) {
	for _, m := range models.All() {
		tn, ok := m.(tabler)
		if !ok {
			t.Fatalf("%T has no table name", m)
		}
		want := "CREATE TABLE IF NOT EXISTS " + tn.TableName() + " ("
		found := false
		for _, stmt := range postgresSchema {
			if strings.HasPrefix(stmt, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no schema for table %s", tn.TableName())
		}
	}
}
