// Package mnist loads the MNIST handwritten digit database as a classification dataset
package mnist

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/neurlang/harness/datasets"
)

// original
const ImgSize = 28

// downscaled
const SmallImgSize = 13

// Classes is the number of digits.
const Classes = 10

const (
	InferSetImg = "t10k-images-idx3-ubyte.gz"
	InferSetVal = "t10k-labels-idx1-ubyte.gz"
	TrainSetImg = "train-images-idx3-ubyte.gz"
	TrainSetVal = "train-labels-idx1-ubyte.gz"
)

// Digests are the SHA-256 sums of the published files.
var Digests = map[string]string{
	InferSetImg: "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
	InferSetVal: "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
	TrainSetImg: "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
	TrainSetVal: "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
}

const (
	imagesMagic = 0x00000803
	labelsMagic = 0x00000801
)

// Options selects how the files are read.
type Options struct {
	// Small downscales every image to SmallImgSize x SmallImgSize by 2x2 max pooling.
	Small bool
	// SkipVerify skips the digest check.
	SkipVerify bool
	// ValidEvery moves every n-th training image into the valid split. Defaults to 6.
	ValidEvery int
}

// InputSize is the feature width of the images loaded with small.
func InputSize(small bool) int {
	if small {
		return SmallImgSize * SmallImgSize
	}
	return ImgSize * ImgSize
}

// Set is a view of loaded images. Features are computed on access.
type Set struct {
	images [][]byte
	labels []byte
	index  []int
	small  bool
}

func (s *Set) Len() int {
	return len(s.index)
}

func (s *Set) Get(n int) (datasets.ClassificationItem, bool) {
	if n < 0 || n >= len(s.index) {
		return datasets.ClassificationItem{}, false
	}
	i := s.index[n]
	img := s.images[i]
	if s.small {
		img = downscale(img)
	}
	f := make([]float64, len(img))
	for j, px := range img {
		f[j] = float64(px) / 255
	}
	return datasets.ClassificationItem{Inputs: f, Label: int(s.labels[i])}, true
}

// Load reads the four database files from dir on fs. The t10k files become
// the test split and the train files are divided into train and valid.
func Load(fs afero.Fs, dir string, opts Options) (datasets.Splits[datasets.ClassificationItem], error) {
	var none datasets.Splits[datasets.ClassificationItem]
	if opts.ValidEvery <= 1 {
		opts.ValidEvery = 6
	}
	trainImages, trainLabels, err := loadPair(fs, dir, TrainSetImg, TrainSetVal, opts)
	if err != nil {
		return none, err
	}
	testImages, testLabels, err := loadPair(fs, dir, InferSetImg, InferSetVal, opts)
	if err != nil {
		return none, err
	}

	train := &Set{images: trainImages, labels: trainLabels, small: opts.Small}
	valid := &Set{images: trainImages, labels: trainLabels, small: opts.Small}
	for i := range trainImages {
		if i%opts.ValidEvery == opts.ValidEvery-1 {
			valid.index = append(valid.index, i)
		} else {
			train.index = append(train.index, i)
		}
	}
	test := &Set{images: testImages, labels: testLabels, small: opts.Small}
	for i := range testImages {
		test.index = append(test.index, i)
	}
	return datasets.Splits[datasets.ClassificationItem]{TrainSet: train, ValidSet: valid, TestSet: test}, nil
}

func loadPair(fs afero.Fs, dir, imgName, valName string, opts Options) ([][]byte, []byte, error) {
	data, err := readFile(fs, dir, imgName, !opts.SkipVerify)
	if err != nil {
		return nil, nil, err
	}
	images, err := parseImages(data)
	if err != nil {
		return nil, nil, errors.Wrap(err, imgName)
	}
	data, err = readFile(fs, dir, valName, !opts.SkipVerify)
	if err != nil {
		return nil, nil, err
	}
	labels, err := parseLabels(data)
	if err != nil {
		return nil, nil, errors.Wrap(err, valName)
	}
	if len(images) != len(labels) {
		return nil, nil, errors.Errorf("mnist: %d images but %d labels in %s", len(images), len(labels), dir)
	}
	return images, labels, nil
}

func readFile(fs afero.Fs, dir, name string, verify bool) ([]byte, error) {
	path := filepath.Join(dir, name)
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "mnist")
	}
	if verify {
		sum := sha256.Sum256(raw)
		if hex.EncodeToString(sum[:]) != Digests[name] {
			return nil, errors.Errorf("mnist: file hash for file '%s' is incorrect", path)
		}
	}
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "mnist: gzip file '%s'", path)
	}
	defer gz.Close()
	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, errors.Wrapf(err, "mnist: buffering file '%s'", path)
	}
	return data, nil
}

func parseImages(data []byte) ([][]byte, error) {
	if len(data) < 16 || binary.BigEndian.Uint32(data) != imagesMagic {
		return nil, errors.New("not an idx3 image file")
	}
	n := int(binary.BigEndian.Uint32(data[4:]))
	rows := binary.BigEndian.Uint32(data[8:])
	cols := binary.BigEndian.Uint32(data[12:])
	if rows != ImgSize || cols != ImgSize {
		return nil, errors.Errorf("images are %dx%d, want %dx%d", rows, cols, ImgSize, ImgSize)
	}
	data = data[16:]
	if len(data) != n*ImgSize*ImgSize {
		return nil, errors.Errorf("%d pixel bytes for %d images", len(data), n)
	}
	set := make([][]byte, n)
	for i := range set {
		set[i] = data[i*ImgSize*ImgSize : (i+1)*ImgSize*ImgSize]
	}
	return set, nil
}

func parseLabels(data []byte) ([]byte, error) {
	if len(data) < 8 || binary.BigEndian.Uint32(data) != labelsMagic {
		return nil, errors.New("not an idx1 label file")
	}
	n := int(binary.BigEndian.Uint32(data[4:]))
	data = data[8:]
	if len(data) != n {
		return nil, errors.Errorf("%d label bytes for %d labels", len(data), n)
	}
	for _, l := range data {
		if l >= Classes {
			return nil, errors.Errorf("label %d out of range", l)
		}
	}
	return data, nil
}

func max4(a, b, c, d byte) (o byte) {
	o = a
	if b > o {
		o = b
	}
	if c > o {
		o = c
	}
	if d > o {
		o = d
	}
	return o
}

// downscale max pools the 2x2 blocks starting at row and column 1.
func downscale(img []byte) []byte {
	small := make([]byte, SmallImgSize*SmallImgSize)
	for y := 0; y < SmallImgSize; y++ {
		for x := 0; x < SmallImgSize; x++ {
			base := 1 + ImgSize + 2*x + 2*y*ImgSize
			small[y*SmallImgSize+x] = max4(img[base], img[base+1], img[base+ImgSize], img[base+ImgSize+1])
		}
	}
	return small
}
