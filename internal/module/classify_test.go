package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benthomasson/ftl-go/internal/ftlerr"
	"github.com/stretchr/testify/require"
)

func TestClassifyPrecedence(t *testing.T) {
	require.Equal(t, StyleBinary, Classify([]byte{0xff, 0xfe, 0x00}))
	require.Equal(t, StyleNewStyle, Classify([]byte("import json\nAnsibleModule(\nWANT_JSON\n")))
	require.Equal(t, StyleWantJSON, Classify([]byte("#!/usr/bin/python\nWANT_JSON\n")))
	require.Equal(t, StyleOldStyle, Classify([]byte("#!/bin/sh\necho hi\n")))
}

func TestFindResolvesFirstMatchInOrder(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "argtest.py"), []byte("WANT_JSON"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "argtest"), []byte("#!/bin/sh"), 0o755))

	desc, err := Find("argtest", []string{dirA, dirB})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dirA, "argtest"), desc.Path)
	require.Equal(t, StyleOldStyle, desc.Style)
}

func TestFindSkipsEmptyDirs(t *testing.T) {
	_, err := Find("nope", []string{"", ""})
	require.ErrorIs(t, err, ftlerr.ErrModuleNotFound)
}

func TestFindMissingModule(t *testing.T) {
	_, err := Find("SDFAVADFBG_not_found_DFDFDF", []string{t.TempDir()})
	require.ErrorIs(t, err, ftlerr.ErrModuleNotFound)
}
