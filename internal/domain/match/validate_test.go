package match_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/cricscore/internal/domain/match"
	. "github.com/smartystreets/goconvey/convey"
)

func complete() match.RawInput {
	return match.RawInput{
		Score:         "94",
		Over:          "11.4",
		WicketsFallen: "1",
		RunsLast5:     "42",
		WicketsLast5:  "1",
		Country:       "India",
		Venue:         "Wankhede Stadium",
	}
}

func TestValidate(t *testing.T) {
	Convey("Given a complete legal form", t, func() {
		_, res := match.Recompute(complete())

		Convey("Then it is submittable with no message", func() {
			So(res.Submittable, ShouldBeTrue)
			So(res.Rule, ShouldEqual, match.RuleNone)
			So(res.Message, ShouldBeEmpty)
			So(res.FieldErrors, ShouldBeEmpty)
			So(res.Missing, ShouldBeEmpty)
		})
	})

	Convey("Given the scenario without last-5-overs data", t, func() {
		raw := match.RawInput{Score: "94", Over: "11.4", WicketsFallen: "1", Country: "India", Venue: "Eden Gardens"}
		_, res := match.Recompute(raw)

		Convey("Then there is no message but submission is blocked", func() {
			So(res.Message, ShouldBeEmpty)
			So(res.Submittable, ShouldBeFalse)
			So(res.Missing, ShouldResemble, []match.Field{match.FieldRunsLast5, match.FieldWicketsLast5})
		})
	})

	Convey("Given each required field left empty", t, func() {
		for _, f := range match.RequiredFields {
			raw, err := complete().With(f, "")
			So(err, ShouldBeNil)
			_, res := match.Recompute(raw)
			So(res.Submittable, ShouldBeFalse)
			So(res.Message, ShouldBeEmpty)
			So(res.Missing, ShouldResemble, []match.Field{f})
		}
	})

	Convey("Given eleven wickets fallen", t, func() {
		raw := complete()
		raw.WicketsFallen = "11"
		d, res := match.Recompute(raw)

		Convey("Then wickets remaining is undefined and the wickets message shows", func() {
			So(d.WicketsRemaining.Defined(), ShouldBeFalse)
			So(res.Rule, ShouldEqual, match.RuleWicketsRange)
			So(res.Message, ShouldEqual, "Wickets fallen must be between 0 and 10.")
			So(res.FieldErrors[match.FieldWicketsFallen], ShouldEqual, res.Message)
			So(res.Submittable, ShouldBeFalse)
		})
	})

	Convey("Given over 19.9", t, func() {
		raw := complete()
		raw.Over = "19.9"
		d, res := match.Recompute(raw)

		Convey("Then the ball notation message shows", func() {
			So(errors.Is(d.OverErr, match.ErrInvalidBallNotation), ShouldBeTrue)
			So(res.Rule, ShouldEqual, match.RuleBallNotation)
			So(res.Message, ShouldEqual, "Invalid over format. Balls can only be from 0 to 5.")
			So(res.FieldErrors, ShouldContainKey, match.FieldOver)
			So(res.Submittable, ShouldBeFalse)
		})
	})

	Convey("Given over outside [0,20] or not a number", t, func() {
		for _, over := range []string{"21", "-1", "abc"} {
			raw := complete()
			raw.Over = over
			_, res := match.Recompute(raw)
			So(res.Rule, ShouldEqual, match.RuleOversRange)
			So(res.Message, ShouldEqual, "Overs must be between 0 and 20.")
			So(res.Submittable, ShouldBeFalse)
		}
	})

	Convey("Given a derived state whose parser hit the innings ceiling", t, func() {
		raw := complete()
		d := match.DeriveMetrics(raw)
		d.BallsBowled = match.Int{}
		d.OverErr = &match.OverError{Over: 20, Err: match.ErrOversExceeded}
		res := match.Validate(raw, d)

		Convey("Then the overs exceeded message shows", func() {
			So(res.Rule, ShouldEqual, match.RuleOversExceeded)
			So(res.Message, ShouldEqual, "Overs cannot exceed 20.")
		})
	})

	Convey("Given wickets and over both invalid", t, func() {
		raw := complete()
		raw.WicketsFallen = "12"
		raw.Over = "25"
		_, first := match.Recompute(raw)
		_, second := match.Recompute(raw)

		Convey("Then the wickets rule wins every time and only one error surfaces", func() {
			So(first.Rule, ShouldEqual, match.RuleWicketsRange)
			So(len(first.FieldErrors), ShouldEqual, 1)
			So(second, ShouldResemble, first)
		})
	})

	Convey("Given an invalid over with wickets missing", t, func() {
		raw := complete()
		raw.WicketsFallen = ""
		raw.Over = "7.8"
		_, res := match.Recompute(raw)

		Convey("Then the over message shows and the empty field stays silent", func() {
			So(res.Rule, ShouldEqual, match.RuleBallNotation)
			So(res.Missing, ShouldResemble, []match.Field{match.FieldWicketsFallen})
		})
	})

	Convey("Given a validation result encoded as JSON", t, func() {
		raw := complete()
		raw.Over = "19.9"
		_, res := match.Recompute(raw)
		b, err := json.Marshal(res)

		Convey("Then the rule is named", func() {
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"rule":"ball_notation"`)
			So(string(b), ShouldContainSubstring, `"submittable":false`)
		})
	})
}

func TestRawInput(t *testing.T) {
	Convey("Given a raw input", t, func() {
		raw := match.RawInput{}

		Convey("When a field is set through With", func() {
			next, err := raw.With(match.FieldOver, "3.2")

			Convey("Then only the copy changes", func() {
				So(err, ShouldBeNil)
				So(next.Over, ShouldEqual, "3.2")
				So(raw.Over, ShouldBeEmpty)
				v, err := next.Get(match.FieldOver)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "3.2")
			})
		})

		Convey("When an unknown field is used", func() {
			_, err := raw.With("bowler", "x")
			_, getErr := raw.Get("bowler")
			_, parseErr := match.ParseField("bowler")

			Convey("Then ErrUnknownField is returned", func() {
				So(errors.Is(err, match.ErrUnknownField), ShouldBeTrue)
				So(errors.Is(getErr, match.ErrUnknownField), ShouldBeTrue)
				So(errors.Is(parseErr, match.ErrUnknownField), ShouldBeTrue)
			})
		})

		Convey("When a known field name is parsed", func() {
			f, err := match.ParseField("runsLast5")
			So(err, ShouldBeNil)
			So(f, ShouldEqual, match.FieldRunsLast5)
		})

		Convey("When blank fields contain only spaces", func() {
			raw.Score = "   "
			So(raw.Missing(), ShouldContain, match.FieldScore)
		})
	})

	Convey("Given raw numbers", t, func() {
		v, ok := match.ParseNumber(" 42 ")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 42)
		for _, bad := range []string{"", "NaN", "Inf", "4x"} {
			_, ok := match.ParseNumber(bad)
			So(ok, ShouldBeFalse)
		}
	})
}

func TestValidate_UnusableNumbers(t *testing.T) {
	cases := []struct {
		name  string
		field match.Field
		value string
	}{
		{"a score that is not a number", match.FieldScore, "abc"},
		{"a negative score", match.FieldScore, "-4"},
		{"runs in the last five overs that are not a number", match.FieldRunsLast5, "lots"},
		{"fractional wickets in the last five overs", match.FieldWicketsLast5, "2.5"},
		{"more than ten wickets in the last five overs", match.FieldWicketsLast5, "15"},
	}
	for _, tc := range cases {
		Convey("Given "+tc.name, t, func() {
			raw, err := complete().With(tc.field, tc.value)
			So(err, ShouldBeNil)
			_, res := match.Recompute(raw)

			Convey("Then the form is blocked without a rule message", func() {
				So(res.Submittable, ShouldBeFalse)
				So(res.Rule, ShouldEqual, match.RuleNone)
				So(res.Message, ShouldBeEmpty)
				So(res.Missing, ShouldBeEmpty)
				So(res.Invalid, ShouldResemble, []match.Field{tc.field})
				So(res.Reason(), ShouldEqual, "Enter a valid number for: "+string(tc.field)+".")
			})
		})
	}

	Convey("Given whole wickets in the last five overs", t, func() {
		raw, _ := complete().With(match.FieldWicketsLast5, "3")
		_, res := match.Recompute(raw)

		Convey("Then the form stays submittable", func() {
			So(res.Submittable, ShouldBeTrue)
			So(res.Invalid, ShouldBeEmpty)
			So(res.Reason(), ShouldBeEmpty)
		})
	})

	Convey("Given an unusable score and an illegal over", t, func() {
		raw := complete()
		raw.Score = "abc"
		raw.Over = "12.6"
		_, res := match.Recompute(raw)

		Convey("Then the rule message is the reason", func() {
			So(res.Reason(), ShouldEqual, match.MsgBallNotation)
			So(res.Invalid, ShouldResemble, []match.Field{match.FieldScore})
		})
	})

	Convey("Given only missing fields", t, func() {
		raw := complete()
		raw.Venue = ""
		_, res := match.Recompute(raw)

		Convey("Then the reason asks for every field", func() {
			So(res.Reason(), ShouldEqual, match.MsgRequired)
		})
	})
}
