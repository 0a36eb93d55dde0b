/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"io"
	"os"
	"path/filepath"

	"github.com/Comcast/shapes/util"

	"github.com/dlclark/regexp2"
)

var inlinePattern = regexp2.MustCompile(`%inline *\("([^"]*)"\)`, regexp2.None)

// Inline replaces '%inline("NAME")' with f(NAME).
//
// Case specs use this to keep long guards and actions in their own
// files.
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	var problem error
	s, err := inlinePattern.ReplaceFunc(string(bs), func(m regexp2.Match) string {
		if problem != nil {
			return ""
		}
		name := m.GroupByNumber(1).String()
		replacement, err := f(name)
		if err != nil {
			problem = err
			return ""
		}
		util.Logger.Debug().Str("name", name).Int("bytes", len(replacement)).Msg("inlining")
		return string(replacement)
	}, -1, -1)
	if err != nil {
		return nil, err
	}
	if problem != nil {
		return nil, problem
	}
	return []byte(s), nil
}

// ReadFileWithInlines is a replacement for os.ReadFile that Inlines
// files relative to the filename's directory.
func ReadFileWithInlines(filename string) ([]byte, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Inline(bs, fromDir(filepath.Dir(filename)))
}

// ReadAllWithInlines is a replacement for io.ReadAll that Inlines
// files relative to the given directory.
func ReadAllWithInlines(in io.Reader, dir string) ([]byte, error) {
	bs, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return Inline(bs, fromDir(dir))
}

func fromDir(dir string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	}
}
