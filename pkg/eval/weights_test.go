package eval

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

// testWeightsBytes builds a valid weight file where entry 0 of every
// block holds the block index.
func testWeightsBytes() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, weightsHeader{
		Magic:   weightsMagic,
		Version: weightsVersion,
		NPly:    NPly,
	})
	var block = make([]byte, 2*WeightsPerPly)
	for p := 0; p < NPly; p++ {
		binary.LittleEndian.PutUint16(block, uint16(p))
		buf.Write(block)
	}
	return buf.Bytes()
}

func TestReadWeights(t *testing.T) {
	var data = testWeightsBytes()
	var w, err = ReadWeights(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	for p := 0; p < NPly; p++ {
		if w.plies[p][0] != int16(p) || w.plies[p][1] != 0 {
			t.Fatal(p, w.plies[p][0])
		}
	}
	// ply selection: early plies borrow weights from two plies later
	if w.Ply(60)[0] != 2 || w.Ply(59)[0] != 3 || w.Ply(58)[0] != 2 {
		t.Error(w.Ply(60)[0], w.Ply(59)[0], w.Ply(58)[0])
	}
	if w.Ply(0)[0] != 60 || w.Ply(30)[0] != 30 {
		t.Error(w.Ply(0)[0], w.Ply(30)[0])
	}
}

func TestReadWeightsErrors(t *testing.T) {
	var good = testWeightsBytes()

	var bad = append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(bad, 0xDEADBEEF)
	if _, err := ReadWeights(bytes.NewReader(bad)); !errors.Is(err, ErrWeightsMagic) {
		t.Error("magic", err)
	}

	bad = append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(bad[4:], 99)
	if _, err := ReadWeights(bytes.NewReader(bad)); !errors.Is(err, ErrWeightsVersion) {
		t.Error("version", err)
	}

	bad = append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(bad[8:], NPly+1)
	if _, err := ReadWeights(bytes.NewReader(bad)); !errors.Is(err, ErrWeightsSize) {
		t.Error("nply", err)
	}

	if _, err := ReadWeights(bytes.NewReader(good[:len(good)/2])); err == nil {
		t.Error("accepted a short file")
	}

	bad = append(append([]byte(nil), good...), 0)
	if _, err := ReadWeights(bytes.NewReader(bad)); !errors.Is(err, ErrWeightsSize) {
		t.Error("trailing", err)
	}
}

func TestLoadWeightsZstd(t *testing.T) {
	var dir = t.TempDir()
	var data = testWeightsBytes()

	var plain = filepath.Join(dir, "weights.dat")
	if err := os.WriteFile(plain, data, 0o644); err != nil {
		t.Fatal(err)
	}
	var w, err = LoadWeights(plain)
	if err != nil {
		t.Fatal(err)
	}
	if w.plies[17][0] != 17 {
		t.Fatal(w.plies[17][0])
	}

	var packed = filepath.Join(dir, "weights.dat.zst")
	f, err := os.Create(packed)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	w, err = LoadWeights(packed)
	if err != nil {
		t.Fatal(err)
	}
	if w.plies[17][0] != 17 {
		t.Fatal(w.plies[17][0])
	}

	if _, err := LoadWeights(filepath.Join(dir, "missing.dat")); err == nil {
		t.Error("accepted a missing file")
	}
}

func TestZeroWeights(t *testing.T) {
	var w = Zero()
	for n := 0; n <= 60; n++ {
		var block = w.Ply(n)
		if len(block) != WeightsPerPly || block[0] != 0 {
			t.Fatal(n)
		}
	}
}
