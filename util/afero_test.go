// Fabula
// Copyright (C) 2013-2020+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package util

import (
	"testing"

	"github.com/spf13/afero"
)

func TestFsTree0(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := WriteFile(fs, "/stories/a.yaml", []byte("a"), 0660); err != nil {
		t.Fatalf("could not write file: %+v", err)
	}
	if err := WriteFile(fs, "/main.yaml", []byte("main"), 0660); err != nil {
		t.Fatalf("could not write file: %+v", err)
	}

	tree, err := FsTree(fs, "/")
	if err != nil {
		t.Fatalf("tree failed: %+v", err)
	}
	exp := ".\n" +
		"├── main.yaml\n" +
		"└── stories/\n" +
		"    └── a.yaml\n"
	if tree != exp {
		t.Errorf("unexpected tree:\n%s", tree)
		t.Logf("expected:\n%s", exp)
	}
}

func TestWriteFile0(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := WriteFile(fs, "/out/deep/graph.dot", []byte("digraph {}"), 0660); err != nil {
		t.Fatalf("could not write file: %+v", err)
	}
	data, err := afero.ReadFile(fs, "/out/deep/graph.dot")
	if err != nil {
		t.Fatalf("could not read file: %+v", err)
	}
	if s := string(data); s != "digraph {}" {
		t.Errorf("unexpected contents: %s", s)
	}

	// relative names in the current dir don't need a parent
	if err := WriteFile(fs, "graph.dot", []byte("x"), 0660); err != nil {
		t.Errorf("could not write file: %+v", err)
	}
}
