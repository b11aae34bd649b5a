package cli

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/ardnew/mung"

	"github.com/ardnew/identstr/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// envIncludePath names the environment variable holding extra include
// directories, separated like PATH.
const envIncludePath = pkg.EnvPrefix + "INCLUDE_PATH"

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the configuration directory
// with the given path elements.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}

// includePath returns the include search path: the directories given on
// the command line followed by those listed in env. Empty entries are
// dropped.
func includePath(dirs []string, env string) []string {
	path := mung.Make(
		mung.WithSubjectItems(env),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
	).String()

	return slices.DeleteFunc(filepath.SplitList(path), func(s string) bool {
		return s == ""
	})
}
