package transport

import "testing"

func TestIsValidPythonVersionLine(t *testing.T) {
	cases := map[string]bool{
		"Python 3.11.2":     true,
		"Python 3.9.0":      true,
		"Python 3.11":       false,
		"python 3.11.2":     false,
		"Python 3.11.2\nx":  false,
		"":                  false,
		"Python3.11.2":      false,
		"Python 3.11.2rc1":  false,
	}
	for line, want := range cases {
		if got := isValidPythonVersionLine(line); got != want {
			t.Errorf("isValidPythonVersionLine(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestPythonMajorVersion(t *testing.T) {
	cases := map[string]int{
		"Python 3.11.2": 3,
		"Python 2.7.18": 2,
		"Python 4.0.0":  4,
	}
	for line, want := range cases {
		if got := pythonMajorVersion(line); got != want {
			t.Errorf("pythonMajorVersion(%q) = %d, want %d", line, got, want)
		}
	}
}
