/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/recordstore"
	"github.com/suparena/recordstore/config"
	"github.com/suparena/recordstore/model"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.True(t, strings.HasPrefix(out, "recordstore "+recordstore.Version), out)
}

func TestTablesCommand(t *testing.T) {
	out := execute(t, "tables")

	schemas, err := config.LoadTables(strings.NewReader(out))
	require.NoError(t, err)

	tables := make([]string, 0, len(schemas))
	for _, s := range schemas {
		tables = append(tables, s.Table)
	}
	assert.ElementsMatch(t, []string{model.PersonTable, model.BookTable}, tables)
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"serve", "--aws-access-key=key", "--aws-secret-key="})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	assert.Error(t, cmd.Execute())
}
