package unitcell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// LoadUnitCellFile reads a unit cell file from disk
func LoadUnitCellFile(path string) (*UnitCell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	uc, err := ReadUnitCellFile(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("unit cell file %s: %w", path, err)
	}
	return uc, nil
}

// ReadUnitCellFile parses a unit cell file. Text after '#' is a comment.
// The data lines are, in order:
//
//	size_x size_y size_z                   Angstroms
//	three cell vector lines                must be orthogonal
//	num_atoms num_materials
//	id cx cy cz material [category]        num_atoms lines
//	num_interactions exchange_type         isotropic, vectorial or tensorial
//	id i j dx dy dz J...                   1, 3 or 9 exchange values
//
// Exchange values form the normalised tensor that scales the material
// exchange constants. The interactions replace the cutoff search.
func ReadUnitCellFile(r io.Reader, name string) (*UnitCell, error) {
	lines, err := dataLines(r)
	if err != nil {
		return nil, err
	}
	p := &ucfParser{lines: lines}

	uc := &UnitCell{Structure: name, FromFile: name}
	size, err := p.floats(3)
	if err != nil {
		return nil, fmt.Errorf("unit cell size: %w", err)
	}
	for i, s := range size {
		if s <= 0 {
			return nil, fmt.Errorf("unit cell size %d must be positive, got %g", i, s)
		}
		uc.Dimensions[i] = s
	}
	for i := 0; i < 3; i++ {
		v, err := p.floats(3)
		if err != nil {
			return nil, fmt.Errorf("unit cell vector %d: %w", i, err)
		}
		for j := 0; j < 3; j++ {
			if j != i && v[j] != 0 {
				return nil, fmt.Errorf("unit cell vector %d is not along its axis: non-orthogonal cells are not supported", i)
			}
		}
		if v[i] <= 0 {
			return nil, fmt.Errorf("unit cell vector %d has no positive length along its axis", i)
		}
	}

	counts, err := p.ints(2)
	if err != nil {
		return nil, fmt.Errorf("atom count: %w", err)
	}
	numAtoms, numMaterials := counts[0], counts[1]
	if numAtoms < 1 || numMaterials < 1 {
		return nil, fmt.Errorf("need at least one atom and one material, got %d and %d", numAtoms, numMaterials)
	}
	uc.Atoms = make([]Atom, numAtoms)
	for a := 0; a < numAtoms; a++ {
		f, err := p.fields(5, 7)
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", a, err)
		}
		v, err := parseFloats(f[1:4])
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", a, err)
		}
		ids, err := parseInts(append([]string{f[0]}, f[4:]...))
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", a, err)
		}
		if ids[0] != a {
			return nil, fmt.Errorf("atom %d listed with id %d", a, ids[0])
		}
		for _, c := range v {
			if c < 0 || c >= 1 {
				return nil, fmt.Errorf("atom %d: fractional coordinate %g outside [0,1)", a, c)
			}
		}
		if ids[1] < 0 || ids[1] >= numMaterials {
			return nil, fmt.Errorf("atom %d: material %d of %d", a, ids[1], numMaterials)
		}
		uc.Atoms[a] = Atom{Material: ids[1], X: v[0], Y: v[1], Z: v[2]}
		if len(ids) > 2 {
			uc.Atoms[a].Category = ids[2]
		}
	}

	f, err := p.fields(2, 2)
	if err != nil {
		return nil, fmt.Errorf("interaction count: %w", err)
	}
	numInteractions, err := strconv.Atoi(f[0])
	if err != nil {
		return nil, fmt.Errorf("interaction count: %w", err)
	}
	numValues := map[string]int{"isotropic": 1, "vectorial": 3, "tensorial": 9}[f[1]]
	if numValues == 0 {
		return nil, fmt.Errorf("unknown exchange type %q", f[1])
	}

	uc.Interactions = make([]Interaction, numInteractions)
	for n := 0; n < numInteractions; n++ {
		f, err := p.fields(6+numValues, 6+numValues)
		if err != nil {
			return nil, fmt.Errorf("interaction %d: %w", n, err)
		}
		ids, err := parseInts(f[:6])
		if err != nil {
			return nil, fmt.Errorf("interaction %d: %w", n, err)
		}
		j, err := parseFloats(f[6:])
		if err != nil {
			return nil, fmt.Errorf("interaction %d: %w", n, err)
		}
		in := Interaction{I: ids[1], J: ids[2], Dx: ids[3], Dy: ids[4], Dz: ids[5]}
		if in.I < 0 || in.I >= numAtoms || in.J < 0 || in.J >= numAtoms {
			return nil, fmt.Errorf("interaction %d links atoms %d and %d of %d", n, in.I, in.J, numAtoms)
		}
		if in.I == in.J && in.Dx == 0 && in.Dy == 0 && in.Dz == 0 {
			return nil, fmt.Errorf("interaction %d couples atom %d to itself", n, in.I)
		}
		switch numValues {
		case 1:
			in.Jij = mat.NewDiagDense(3, []float64{j[0], j[0], j[0]})
		case 3:
			in.Jij = mat.NewDiagDense(3, j)
		default:
			in.Jij = mat.NewDense(3, 3, j)
		}
		uc.Interactions[n] = in
	}
	if p.next < len(p.lines) {
		return nil, fmt.Errorf("unexpected data after %d interactions: %q", numInteractions, p.lines[p.next])
	}
	uc.InteractionRange = interactionRange(uc.Interactions)
	return uc, nil
}

// dataLines returns the whitespace separated fields of every non-empty line
// with comments removed
func dataLines(r io.Reader) ([][]string, error) {
	var lines [][]string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if f := strings.Fields(line); len(f) > 0 {
			lines = append(lines, f)
		}
	}
	return lines, sc.Err()
}

type ucfParser struct {
	lines [][]string
	next  int
}

func (p *ucfParser) fields(lo, hi int) ([]string, error) {
	if p.next >= len(p.lines) {
		return nil, io.ErrUnexpectedEOF
	}
	f := p.lines[p.next]
	p.next++
	if len(f) < lo || len(f) > hi {
		return nil, fmt.Errorf("line %q has %d values, want %d to %d", strings.Join(f, " "), len(f), lo, hi)
	}
	return f, nil
}

func (p *ucfParser) floats(n int) ([]float64, error) {
	f, err := p.fields(n, n)
	if err != nil {
		return nil, err
	}
	return parseFloats(f)
}

func (p *ucfParser) ints(n int) ([]int, error) {
	f, err := p.fields(n, n)
	if err != nil {
		return nil, err
	}
	return parseInts(f)
}

func parseFloats(f []string) ([]float64, error) {
	out := make([]float64, len(f))
	for i, s := range f {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(f []string) ([]int, error) {
	out := make([]int, len(f))
	for i, s := range f {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
