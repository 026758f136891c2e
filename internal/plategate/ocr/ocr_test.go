package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rtypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDetectText struct {
	out   *rekognition.DetectTextOutput
	err   error
	calls []*rekognition.DetectTextInput
}

func (f *fakeDetectText) DetectText(_ context.Context, in *rekognition.DetectTextInput, _ ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	f.calls = append(f.calls, in)
	return f.out, f.err
}

func detection(text string, kind rtypes.TextTypes, conf float32) rtypes.TextDetection {
	return rtypes.TextDetection{
		DetectedText: aws.String(text),
		Type:         kind,
		Confidence:   aws.Float32(conf),
		Geometry: &rtypes.Geometry{BoundingBox: &rtypes.BoundingBox{
			Left: aws.Float32(0.25), Top: aws.Float32(0.5),
			Width: aws.Float32(0.5), Height: aws.Float32(0.25),
		}},
	}
}

func TestFilterText(t *testing.T) {
	tests := map[string]string{
		"abc-1d23":    "ABC 1D23",
		"ABC 1234":    "ABC 1234",
		"  xyz9a88  ": "XYZ9A88",
		"BR@SIL!":     "BRSIL",
		"ção":         "O",
		"---":         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, filterText(in), "filterText(%q)", in)
	}
}

func TestRekognition_KeepsEngineOrderAndFilters(t *testing.T) {
	fake := &fakeDetectText{out: &rekognition.DetectTextOutput{
		TextDetections: []rtypes.TextDetection{
			detection("xyz-9a88", rtypes.TextTypesLine, 71.5),
			detection("J4NK", rtypes.TextTypesWord, 99),
			detection("***", rtypes.TextTypesWord, 99),
		},
	}}
	eng := NewRekognition(fake, 0.5)

	img := image.NewGray(image.Rect(0, 0, 200, 100))
	cands, err := eng.Recognize(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, "XYZ 9A88", cands[0].Text)
	require.NotNil(t, cands[0].Confidence)
	assert.InDelta(t, 0.715, *cands[0].Confidence, 1e-6)
	require.NotNil(t, cands[0].Box)
	assert.Equal(t, image.Rect(50, 50, 150, 75), *cands[0].Box)
	assert.Equal(t, "J4NK", cands[1].Text)

	require.Len(t, fake.calls, 1)
	in := fake.calls[0]
	assert.NotEmpty(t, in.Image.Bytes)
	require.NotNil(t, in.Filters)
	assert.InDelta(t, 50, aws.ToFloat32(in.Filters.WordFilter.MinConfidence), 1e-4)
}

func TestRekognition_NoFilterWhenMinConfidenceZero(t *testing.T) {
	fake := &fakeDetectText{out: &rekognition.DetectTextOutput{}}
	eng := NewRekognition(fake, 0)

	cands, err := eng.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 4, 4)))
	require.NoError(t, err)
	assert.Empty(t, cands)
	assert.Nil(t, fake.calls[0].Filters)
}

func TestRekognition_ServiceErrorIsRecognitionError(t *testing.T) {
	boom := errors.New("InvalidImageFormatException")
	eng := NewRekognition(&fakeDetectText{err: boom}, 0)

	_, err := eng.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 4, 4)))
	var rerr *RecognitionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "rekognition", rerr.Engine)
	assert.Equal(t, StageRecognize, rerr.Stage)
	assert.ErrorIs(t, err, boom)
}

func TestRekognition_NilClient(t *testing.T) {
	_, err := NewRekognition(nil, 0).Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 1, 1)))
	var rerr *RecognitionError
	assert.ErrorAs(t, err, &rerr)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNew_Backends(t *testing.T) {
	eng, closer, err := New(context.Background(), Config{Backend: "NONE"})
	require.NoError(t, err)
	assert.Equal(t, "none", eng.Name())
	assert.NoError(t, closer.Close())

	_, _, err = New(context.Background(), Config{Backend: "easyocr"})
	assert.Error(t, err)
}
