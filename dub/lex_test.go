package dub

import "testing"

func TestLexer(t *testing.T) {
	type test struct {
		input  string
		expect []token
	}
	tests := []test{
		{
			input: "steps '* velocity 80",
			expect: []token{
				{typ: typeIdentifier, text: "steps"},
				{typ: typeQuote, text: "'"},
				{typ: typeAsterisk, text: "*"},
				{typ: typeIdentifier, text: "velocity"},
				{typ: typeInt, text: "80"},
				{typ: typeEOF},
			},
		},
		{
			input: "set vco1_frequency -1.5",
			expect: []token{
				{typ: typeIdentifier, text: "set"},
				{typ: typeIdentifier, text: "vco1_frequency"},
				{typ: typeFloat, text: "-1.5"},
				{typ: typeEOF},
			},
		},
		{
			input: "'1:2,  5,7",
			expect: []token{
				{typ: typeQuote, text: "'"},
				{typ: typeInt, text: "1"},
				{typ: typeColon, text: ":"},
				{typ: typeInt, text: "2"},
				{typ: typeComma, text: ","},
				{typ: typeInt, text: "5"},
				{typ: typeComma, text: ","},
				{typ: typeInt, text: "7"},
				{typ: typeEOF},
			},
		},
		{
			input: "1.0",
			expect: []token{
				{typ: typeFloat, text: "1.0"},
				{typ: typeEOF},
			},
		},
		{
			input: "-1.",
			expect: []token{
				{typ: typeFloat, text: "-1."},
				{typ: typeEOF},
			},
		},
		{
			input: "-.1",
			expect: []token{
				{typ: typeFloat, text: "-.1"},
				{typ: typeEOF},
			},
		},
		{
			input: `bounce "out file.wav" 4`,
			expect: []token{
				{typ: typeIdentifier, text: "bounce"},
				{typ: typeString, text: `"out file.wav"`},
				{typ: typeInt, text: "4"},
				{typ: typeEOF},
			},
		},
	}
	for _, test := range tests {
		t.Log(test.input)
		tokens, err := lex(test.input)
		if err != nil {
			t.Errorf("unexpected lex error: %v", err)
			continue
		}
		if len(tokens) != len(test.expect) {
			t.Fatalf("token mismatch: \nwant: %+v, \ngot:  %+v", test.expect, tokens)
		}
		for i, got := range tokens {
			want := test.expect[i]
			if want.typ != got.typ {
				t.Errorf("wrong type: want %v, got %v", want, got)
			}
			if want.text != got.text {
				t.Errorf("wrong text: want %v, got %v", want, got)
			}
		}
	}
}

func TestLexerErrors(t *testing.T) {
	for _, input := range []string{
		"a -",
		"a .-",
		"a 1x",
		`a "open`,
		"a#",
	} {
		_, err := lex(input)
		if err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}
