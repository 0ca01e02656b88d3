// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestConvertToPgx5DSN rewrites postgres URLs to the migrate driver scheme.
*/
func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/komikflow", "pgx5://u:p@db:5432/komikflow"},
		{"postgresql://db/komikflow?sslmode=disable", "pgx5://db/komikflow?sslmode=disable"},
		{"pgx5://db/komikflow", "pgx5://db/komikflow"},
		{"host=db dbname=komikflow", "host=db dbname=komikflow"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, convertToPgx5DSN(tt.in))
		})
	}
}
