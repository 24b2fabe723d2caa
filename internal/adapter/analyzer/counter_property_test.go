package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"ircount/config"
)

var instructionLines = []string{
	"%1 = add nsw i32 %a, %b",
	"%ptr = alloca i64, align 8",
	"store i32 0, ptr %retval, align 4",
	"%call = call i32 @puts(ptr @.str), !dbg !10",
	"br label %exit",
	"ret void",
	"unreachable",
}

var nonInstructionLines = []string{
	"",
	"; comment",
	"entry:",
	"!dbg !12",
	"declare void @g()",
	"attributes #0 = { nounwind }",
}

// genLines picks lines from pool by index.
func genLines(pool []string, max int) gopter.Gen {
	return gen.SliceOfN(max, gen.IntRange(0, len(pool)-1)).Map(func(idx []int) []string {
		lines := make([]string, len(idx))
		for i, j := range idx {
			lines[i] = pool[j]
		}
		return lines
	})
}

func TestProperty_BodyCountsEveryInstruction(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	c := newTestCounter(t)

	properties.Property("a body of N instruction lines counts N", prop.ForAll(
		func(n int, body []string) bool {
			if n > len(body) {
				n = len(body)
			}
			body = body[:n]
			content := "define void @f() {\n  " + strings.Join(body, "\n  ") + "\n}\n"
			result, err := c.CountString(content)
			return err == nil && result.Instructions == n
		},
		gen.IntRange(0, 30),
		genLines(instructionLines, 30),
	))

	properties.TestingRun(t)
}

func TestProperty_OutsideLinesNeverCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	c := newTestCounter(t)

	properties.Property("instruction-shaped lines outside a body count 0", prop.ForAll(
		func(lines []string) bool {
			content := "}\n" + strings.Join(lines, "\n") + "\n}\n"
			result, err := c.CountString(content)
			return err == nil && result.Instructions == 0
		},
		genLines(append(instructionLines, nonInstructionLines...), 40),
	))

	properties.TestingRun(t)
}

func TestProperty_NonInstructionsNeverCount(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	c := newTestCounter(t)

	properties.Property("labels, metadata, attributes and declarations count 0", prop.ForAll(
		func(lines []string) bool {
			content := "define void @f() {\n" + strings.Join(lines, "\n") + "\n}\n"
			result, err := c.CountString(content)
			return err == nil && result.Instructions == 0
		},
		genLines(nonInstructionLines, 40),
	))

	properties.TestingRun(t)
}

func TestProperty_FunctionTalliesSumToTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)
	c := newTestCounter(t)

	properties.Property("per-function counts add up to the total", prop.ForAll(
		func(sizes []int) bool {
			var b strings.Builder
			want := 0
			for i, n := range sizes {
				fmt.Fprintf(&b, "define void @f%d() {\n", i)
				for j := 0; j < n; j++ {
					b.WriteString("  ret void\n")
				}
				b.WriteString("}\n")
				want += n
			}

			result, err := c.CountString(b.String())
			if err != nil || result.Instructions != want {
				return false
			}
			sum := 0
			for _, fn := range result.Functions {
				sum += fn.Instructions
			}
			return sum == want && len(result.Functions) == len(sizes)
		},
		gen.SliceOfN(8, gen.IntRange(0, 10)),
	))

	properties.TestingRun(t)
}

func TestProperty_ExcludingEverythingCountsZero(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	cfg := config.DefaultConfig().Count
	cfg.ExcludeFunctions = []string{"*"}
	c, err := NewCounter(cfg)
	if err != nil {
		t.Fatal(err)
	}

	properties.Property("a catch-all exclusion counts 0", prop.ForAll(
		func(body []string) bool {
			content := "define void @f() {\n" + strings.Join(body, "\n") + "\n}\n"
			result, err := c.CountString(content)
			return err == nil && result.Instructions == 0
		},
		genLines(instructionLines, 20),
	))

	properties.TestingRun(t)
}
