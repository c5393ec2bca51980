package data

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// IDX magic numbers: unsigned-byte payload with 3 or 1 dimensions.
const (
	idxImagesMagic = 0x00000803
	idxLabelsMagic = 0x00000801
)

// MNISTClasses is the number of classes in MNIST and Fashion-MNIST.
const MNISTClasses = 10

// openIDX opens path, transparently decompressing gzip input.
func openIDX(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	head, err := br.Peek(2)
	if err == nil && head[0] == 0x1f && head[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "open %s", path)
		}
		return struct {
			io.Reader
			io.Closer
		}{zr, f}, nil
	}
	return struct {
		io.Reader
		io.Closer
	}{br, f}, nil
}

// readIDXImages reads an IDX image file.
//
//	magic (2051) | count | rows | cols | count*rows*cols unsigned bytes
func readIDXImages(r io.Reader) (images [][]byte, rows, cols int, err error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, 0, 0, errors.Wrap(ErrInvalidFormat, "images header")
	}
	if header[0] != idxImagesMagic {
		return nil, 0, 0, errors.Wrapf(ErrInvalidFormat, "images magic %#x", header[0])
	}
	count, rows, cols := int(header[1]), int(header[2]), int(header[3])
	if rows == 0 || cols == 0 {
		return nil, 0, 0, errors.Wrapf(ErrInvalidFormat, "images of size %dx%d", rows, cols)
	}

	images = make([][]byte, count)
	for i := range images {
		images[i] = make([]byte, rows*cols)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, 0, 0, errors.Wrapf(ErrInvalidFormat, "image %d truncated", i)
		}
	}
	return images, rows, cols, nil
}

// readIDXLabels reads an IDX label file.
//
//	magic (2049) | count | count unsigned bytes
func readIDXLabels(r io.Reader) ([]byte, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(ErrInvalidFormat, "labels header")
	}
	if header[0] != idxLabelsMagic {
		return nil, errors.Wrapf(ErrInvalidFormat, "labels magic %#x", header[0])
	}
	labels := make([]byte, header[1])
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, errors.Wrap(ErrInvalidFormat, "labels truncated")
	}
	return labels, nil
}

// LoadIDX reads a pair of IDX image and label files into a Dataset with
// pixels scaled to [0, 1]. maxSamples > 0 caps the number of examples.
func LoadIDX(imagesPath, labelsPath string, maxSamples int) (*Dataset, error) {
	ir, err := openIDX(imagesPath)
	if err != nil {
		return nil, errors.Wrap(err, "load images")
	}
	defer ir.Close()
	images, _, _, err := readIDXImages(ir)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", imagesPath)
	}

	lr, err := openIDX(labelsPath)
	if err != nil {
		return nil, errors.Wrap(err, "load labels")
	}
	defer lr.Close()
	raw, err := readIDXLabels(lr)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", labelsPath)
	}

	if len(images) != len(raw) {
		return nil, errors.Errorf("image count (%d) != label count (%d)", len(images), len(raw))
	}
	n := len(images)
	if maxSamples > 0 && n > maxSamples {
		n = maxSamples
	}

	features := make([][]float64, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(images[i]))
		for j, px := range images[i] {
			row[j] = float64(px) / 255.0
		}
		features[i] = row
		labels[i] = int(raw[i])
	}
	return NewDataset(features, labels, MNISTClasses)
}

// LoadMNIST loads the train or test split from dir using the standard file
// names (train-images-idx3-ubyte, t10k-labels-idx1-ubyte, ...). A ".gz"
// variant is used when the plain file is absent. Fashion-MNIST ships with
// the same names.
func LoadMNIST(dir string, train bool, maxSamples int) (*Dataset, error) {
	prefix := "t10k"
	if train {
		prefix = "train"
	}
	images := resolveIDX(filepath.Join(dir, prefix+"-images-idx3-ubyte"))
	labels := resolveIDX(filepath.Join(dir, prefix+"-labels-idx1-ubyte"))
	return LoadIDX(images, labels, maxSamples)
}

func resolveIDX(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if _, err := os.Stat(path + ".gz"); err == nil {
		return path + ".gz"
	}
	return path
}
