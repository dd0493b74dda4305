// Package snapshot persists particle state as plain-text files, one file
// per output step and one line per particle:
//
//	pos.x pos.y pos.z pos.w vel.x vel.y vel.z vel.w
//
// Values use fixed-point formatting with six decimals.
package snapshot

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pthm-cable/cosim/fault"
	"github.com/pthm-cable/cosim/particles"
)

const fieldsPerLine = 2 * particles.Stride

var namePattern = regexp.MustCompile(`^p(\d{6,})\.dat$`)

// FileName returns the snapshot file name for step.
func FileName(step int) string {
	return fmt.Sprintf("p%06d.dat", step)
}

// Writer writes snapshots into a directory that already exists.
type Writer struct {
	Dir string
}

// Path returns the full path of the snapshot for step.
func (w Writer) Path(step int) string {
	return filepath.Join(w.Dir, FileName(step))
}

// Write stores s as the snapshot for step and returns its path.
func (w Writer) Write(step int, s *particles.State) (string, error) {
	path := w.Path(step)
	f, err := os.Create(path)
	if err != nil {
		return "", fault.New(fault.IO, "creating snapshot", err)
	}

	bw := bufio.NewWriter(f)
	pos, vel := s.Positions(), s.Velocities()
	for i := 0; i < s.Len(); i++ {
		p := pos[particles.Stride*i:]
		v := vel[particles.Stride*i:]
		fmt.Fprintf(bw, "%f %f %f %f %f %f %f %f\n",
			p[0], p[1], p[2], p[3], v[0], v[1], v[2], v[3])
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return "", fault.New(fault.IO, "writing snapshot", err)
	}
	if err := f.Close(); err != nil {
		return "", fault.New(fault.IO, "closing snapshot", err)
	}
	return path, nil
}

// Read parses a snapshot file. Blank lines are skipped.
func Read(path string) (*particles.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.New(fault.IO, "opening snapshot", err)
	}
	defer f.Close()

	var pos, vel []float64
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != fieldsPerLine {
			return nil, fault.Newf(fault.IO, "parsing snapshot",
				"%s:%d: got %d fields, want %d", path, line, len(fields), fieldsPerLine)
		}
		var vals [fieldsPerLine]float64
		for i, s := range fields {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fault.Newf(fault.IO, "parsing snapshot", "%s:%d: %v", path, line, err)
			}
			vals[i] = v
		}
		pos = append(pos, vals[:particles.Stride]...)
		vel = append(vel, vals[particles.Stride:]...)
	}
	if err := sc.Err(); err != nil {
		return nil, fault.New(fault.IO, "reading snapshot", err)
	}
	return particles.FromBuffers(len(pos)/particles.Stride, pos, vel)
}

// Entry is one snapshot file found in a directory.
type Entry struct {
	Step int
	Path string
}

// List returns the snapshots in dir ordered by step.
func List(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fault.New(fault.IO, "listing snapshots", err)
	}
	var out []Entry
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		m := namePattern.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		step, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, Entry{Step: step, Path: filepath.Join(dir, de.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out, nil
}
