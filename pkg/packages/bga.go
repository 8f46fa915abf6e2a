package packages

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/OpenTraceLab/coresch/pkg/model"
)

// jedecRows are the row letters of a ball grid. I, O, Q, S, X and Z are
// skipped to avoid confusion with digits.
const jedecRows = "ABCDEFGHJKLMNPRTUVWY"

// Grid generates square ball grid arrays. Balls are named <row><column>,
// row-major, starting at A1.
type Grid struct {
	pattern *regexp.Regexp
}

func (g *Grid) Match(id string) bool { return g.pattern.MatchString(id) }

func (g *Grid) Generate(id string) (*model.Package, error) {
	n, err := count(g.pattern, id)
	if err != nil {
		return nil, err
	}
	size := int(math.Sqrt(float64(n)))
	for size*size > n {
		size--
	}
	for (size+1)*(size+1) <= n {
		size++
	}
	if size*size != n {
		return nil, fmt.Errorf("packages: %s: %w", id, ErrNotSquare)
	}

	balls := make([]string, 0, n)
	for r := 0; r < size; r++ {
		row := RowName(r)
		for c := 0; c < size; c++ {
			balls = append(balls, fmt.Sprintf("%s%d", row, c+1))
		}
	}
	return model.NewPackage(strings.ToUpper(id), balls)
}

// RowName returns the JEDEC letters of a zero-based row: A..Y, then AA, AB
// and so on.
func RowName(row int) string {
	name := ""
	for r := row; ; {
		name = string(jedecRows[r%len(jedecRows)]) + name
		r = r/len(jedecRows) - 1
		if r < 0 {
			break
		}
	}
	return name
}
