package dub

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	type test struct {
		input string
		want  Command
	}
	tests := []test{
		{
			input: "steps '1 pitch 2",
			want: Command{
				Name: Identifier("steps"),
				Args: []Node{
					MatchExpr{matchers: []matcher{listMatch{1}}},
					Identifier("pitch"),
					Int(2),
				},
			},
		},
		{
			input: "steps '* velocity 50.5",
			want: Command{
				Name: Identifier("steps"),
				Args: []Node{
					MatchExpr{matchers: []matcher{matchAll}},
					Identifier("velocity"),
					Float(50.5),
				},
			},
		},
		{
			input: "steps '1,3:5,8",
			want: Command{
				Name: Identifier("steps"),
				Args: []Node{
					MatchExpr{matchers: []matcher{
						listMatch{1},
						rangeMatch{start: 3, end: 5},
						listMatch{8},
					}},
				},
			},
		},
		{
			input: "set hard_sync on",
			want: Command{
				Name: Identifier("set"),
				Args: []Node{Identifier("hard_sync"), Bool(true)},
			},
		},
		{
			input: "set run_stop false",
			want: Command{
				Name: Identifier("set"),
				Args: []Node{Identifier("run_stop"), Bool(false)},
			},
		},
		{
			input: `bounce "kick.wav" 2`,
			want: Command{
				Name: Identifier("bounce"),
				Args: []Node{String("kick.wav"), Int(2)},
			},
		},
		{
			input: `bounce ""`,
			want: Command{
				Name: Identifier("bounce"),
				Args: []Node{String("")},
			},
		},
		{
			input: "start",
			want:  Command{Name: Identifier("start")},
		},
	}
	for _, test := range tests {
		t.Log(test.input)
		got, err := Parse(test.input)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(test.want, got) {
			t.Errorf("\nwant: %+v\ngot:  %+v", test.want, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"1 set",
		"steps '",
		"steps '1:",
		"steps '1:x",
		"steps ',",
		"steps :",
	} {
		if _, err := Parse(input); err == nil {
			t.Errorf("expected error for input: %q", input)
		}
	}
}
