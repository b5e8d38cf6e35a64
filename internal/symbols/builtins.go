package symbols

// BuiltinPackage hosts the types every file sees without imports.
const BuiltinPackage = "kotlin"

var builtinTypes = map[string]int{
	"Any":      0,
	"Unit":     0,
	"Nothing":  0,
	"Int":      0,
	"Long":     0,
	"Double":   0,
	"Float":    0,
	"Boolean":  0,
	"String":   0,
	"Char":     0,
	"Array":    1,
	"List":     1,
	"Set":      1,
	"Map":      2,
	"Function": -1,
}

// Builtin resolves a short builtin type name to its qualified name and the
// number of type arguments it takes (-1 means any).
func Builtin(name string) (fq string, arity int, ok bool) {
	arity, ok = builtinTypes[name]
	if !ok {
		return "", 0, false
	}
	return BuiltinPackage + "." + name, arity, true
}

// LiteralType returns the builtin type of a literal token.
func LiteralType(lit string) string {
	switch {
	case lit == "true" || lit == "false":
		return BuiltinPackage + ".Boolean"
	case lit == "null":
		return BuiltinPackage + ".Nothing"
	case len(lit) >= 2 && lit[0] == '"':
		return BuiltinPackage + ".String"
	case len(lit) >= 3 && lit[0] == '\'':
		return BuiltinPackage + ".Char"
	case isNumber(lit):
		switch lit[len(lit)-1] {
		case 'L':
			return BuiltinPackage + ".Long"
		case 'f', 'F':
			return BuiltinPackage + ".Float"
		}
		for _, r := range lit {
			if r == '.' {
				return BuiltinPackage + ".Double"
			}
		}
		return BuiltinPackage + ".Int"
	}
	return ""
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	start := 0
	if s[0] == '-' {
		start = 1
	}
	digits := 0
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' || c == '_':
		case i == len(s)-1 && (c == 'L' || c == 'f' || c == 'F'):
		default:
			return false
		}
	}
	return digits > 0
}
