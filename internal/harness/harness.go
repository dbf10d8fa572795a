package harness

import (
	"fmt"

	"github.com/coderank/judge/pkg/constants"
	"github.com/coderank/judge/pkg/errs"
	"github.com/coderank/judge/pkg/languages"
)

// A harness is a program fragment appended to a call-style submission: it
// reads the problem's stdin shape, calls the solve function the submission
// must define, and prints the result in the exact form the test bank
// expects. Most problems judge raw stdin/stdout and never touch this
// package.

var registry = map[string]map[languages.LanguageType]string{
	"sum-two-ints": {
		languages.Python: `import sys
def _read():
    data=sys.stdin.read().strip().split()
    return int(data[0]), int(data[1])
if __name__=="__main__":
    a,b=_read()
    print(solve(a,b))`,
		languages.JavaScript: `const fs = require('fs');
const data = fs.readFileSync(0,'utf8').trim().split(/\s+/);
const a = parseInt(data[0],10), b = parseInt(data[1],10);
console.log(String(solve(a,b)));`,
	},

	"find-factorial": {
		languages.Python: `import sys
if __name__=="__main__":
    n = int(sys.stdin.read().strip() or "0")
    print(solve(n))`,
		languages.JavaScript: `const fs = require('fs');
const n = parseInt(fs.readFileSync(0,'utf8').trim()||"0",10);
console.log(String(solve(n)));`,
	},

	"palindrome-check": {
		languages.Python: `import sys
if __name__=="__main__":
    s = sys.stdin.read().strip()
    print(str(bool(solve(s))).lower())`,
		languages.JavaScript: `const fs = require('fs');
const s = fs.readFileSync(0,'utf8').trim();
console.log(String(!!solve(s)).toLowerCase());`,
	},
}

// Compose returns the harness fragment registered for the (problem,
// language) pair, or ErrHarnessMissing when there is none.
func Compose(lang languages.LanguageType, problemSlug string) (string, error) {
	byLang, ok := registry[problemSlug]
	if !ok {
		return "", fmt.Errorf("%w: %s", errs.ErrHarnessMissing, problemSlug)
	}
	fragment, ok := byLang[lang]
	if !ok {
		return "", fmt.Errorf("%w: %s (%s)", errs.ErrHarnessMissing, problemSlug, lang)
	}
	return fragment, nil
}

// Wrap concatenates the user's code with the harness. The submission is
// assumed to define the expected function and produce no top-level output
// of its own.
func Wrap(userCode, fragment string) string {
	return userCode + constants.HarnessSeparator + fragment
}

// Registered reports whether any harness exists for the problem.
func Registered(problemSlug string) bool {
	_, ok := registry[problemSlug]
	return ok
}
