package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"quill/internal/source"
)

const maxSeedBytes = 64 << 10 // 64 KiB

var languageSeeds = []string{
	"",
	"int x;\n",
	"#library \"core\"\nnamespace core { const K = 3; struct Point { int x; int y; }; }\n",
	"#import \"lib/core.qs\"\nusing core;\nint x = K;\n",
	"namespace a::b { enum Color { Red, Green = 5, Blue }; }\nusing a::b: Color = Shade, enum Color;\n",
	"struct Node { int value; struct Node& next; };\nint sum(Node& n) { int s = 0; while (n != null) { s += n.value; n = n.next; } return s; }\n",
	"world int 0: w;\nglobal int g;\nint m[3] = {1, 2, 3};\n",
	"typedef int function(int) & Handler;\nint cb(int a) { return a; }\nHandler h = cb;\n",
	"msgbuild void log(str s, int level = 1) {}\nscript \"main\" (int a) { log(\"x\", a); }\n",
	"fixed f = 1.5;\nbool ok = true && !false;\nstr s = \"a\" \"b\";\n",
	"using n = upmost::a;\nnamespace a { private int hidden; }\n",
	"int x = ;\nint y;\nnamespace n { private using a; }",
	"/* unterminated",
	"\"unterminated",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds adds every .qs file under testdata/, when present.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != source.Extension {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clamp(src))
		return nil
	})
}

func clamp(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
