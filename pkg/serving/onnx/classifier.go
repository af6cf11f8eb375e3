package onnx

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aarogya-ai/platform/pkg/imaging"
	ort "github.com/yalue/onnxruntime_go"
)

// Config describes one exported image classifier.
type Config struct {
	Name        string
	Path        string
	InputName   string
	OutputName  string
	InputShape  []int64
	OutputShape []int64
}

var errRuntimeNotReady = errors.New("onnx runtime not initialised")

// InitRuntime loads the shared onnxruntime library. It must run once before
// any classifier is created.
func InitRuntime(libraryPath string) error {
	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	return nil
}

// ShutdownRuntime releases the environment after every classifier is closed.
func ShutdownRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Classifier wraps a session with preallocated input and output tensors.
// Run reuses those buffers, so calls are serialised.
type Classifier struct {
	cfg          Config
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func (c Config) withDefaults() Config {
	if c.InputName == "" {
		c.InputName = "input"
	}
	if c.OutputName == "" {
		c.OutputName = "output"
	}
	if len(c.InputShape) == 0 {
		c.InputShape = []int64{1, imaging.Size, imaging.Size, 3}
	}
	return c
}

// Validate checks the configuration without touching the runtime.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.Path == "" {
		return fmt.Errorf("%s: model path required", c.Name)
	}
	if len(c.OutputShape) == 0 {
		return fmt.Errorf("%s: output shape required", c.Name)
	}
	want := []int64{1, imaging.Size, imaging.Size, 3}
	if len(c.InputShape) != len(want) {
		return fmt.Errorf("%s: input shape %v, expected %v", c.Name, c.InputShape, want)
	}
	for i := range want {
		if c.InputShape[i] != want[i] {
			return fmt.Errorf("%s: input shape %v, expected %v", c.Name, c.InputShape, want)
		}
	}
	for _, dim := range c.OutputShape {
		if dim <= 0 {
			return fmt.Errorf("%s: invalid output shape %v", c.Name, c.OutputShape)
		}
	}
	return nil
}

func New(cfg Config) (*Classifier, error) {
	if !ort.IsInitialized() {
		return nil, errRuntimeNotReady
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.Path,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session for %s: %w", cfg.Path, err)
	}

	return &Classifier{
		cfg:          cfg,
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (c *Classifier) Name() string { return c.cfg.Name }

func (c *Classifier) Path() string { return c.cfg.Path }

// Predict runs the model on one normalized image and returns a copy of the
// flattened output activations.
func (c *Classifier) Predict(t imaging.Tensor) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	input := c.inputTensor.GetData()
	if len(t.Data) != len(input) {
		return nil, fmt.Errorf("%s: expected %d input values, got %d", c.cfg.Name, len(input), len(t.Data))
	}
	copy(input, t.Data)

	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return append([]float32(nil), c.outputTensor.GetData()...), nil
}

func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
		c.inputTensor = nil
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
		c.outputTensor = nil
	}
	if c.session != nil {
		err := c.session.Destroy()
		c.session = nil
		return err
	}
	return nil
}
