package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rtypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// DetectTextAPI is the slice of the Rekognition client we call.
type DetectTextAPI interface {
	DetectText(ctx context.Context, in *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// Rekognition sends the binarized image to AWS Rekognition DetectText.
// Rekognition has no character whitelist, so results are post-filtered.
type Rekognition struct {
	client        DetectTextAPI
	minConfidence float32 // percent, 0..100
}

func NewRekognition(client DetectTextAPI, minConfidence float64) *Rekognition {
	return &Rekognition{client: client, minConfidence: float32(minConfidence * 100)}
}

func (r *Rekognition) Name() string { return "rekognition" }

func (r *Rekognition) Recognize(ctx context.Context, img *image.Gray) ([]types.Candidate, error) {
	if r.client == nil {
		return nil, recognitionErr(r.Name(), errors.New("rekognition client not configured"))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, recognitionErr(r.Name(), err)
	}

	in := &rekognition.DetectTextInput{
		Image: &rtypes.Image{Bytes: buf.Bytes()},
	}
	if r.minConfidence > 0 {
		in.Filters = &rtypes.DetectTextFilters{
			WordFilter: &rtypes.DetectionFilter{MinConfidence: aws.Float32(r.minConfidence)},
		}
	}

	out, err := r.client.DetectText(ctx, in)
	if err != nil {
		return nil, recognitionErr(r.Name(), err)
	}

	bounds := img.Bounds()
	var cands []types.Candidate
	for _, d := range out.TextDetections {
		if d.Type != rtypes.TextTypesLine && d.Type != rtypes.TextTypesWord {
			continue
		}
		text := filterText(aws.ToString(d.DetectedText))
		if text == "" {
			continue
		}
		c := types.Candidate{Text: text}
		if d.Confidence != nil {
			v := float64(*d.Confidence) / 100
			c.Confidence = &v
		}
		if d.Geometry != nil && d.Geometry.BoundingBox != nil {
			c.Box = pixelBox(d.Geometry.BoundingBox, bounds)
		}
		cands = append(cands, c)
	}
	return cands, nil
}

// pixelBox converts Rekognition's ratio box into pixel coordinates.
func pixelBox(bb *rtypes.BoundingBox, bounds image.Rectangle) *image.Rectangle {
	w, h := float32(bounds.Dx()), float32(bounds.Dy())
	left := aws.ToFloat32(bb.Left) * w
	top := aws.ToFloat32(bb.Top) * h
	r := image.Rect(
		bounds.Min.X+int(left),
		bounds.Min.Y+int(top),
		bounds.Min.X+int(left+aws.ToFloat32(bb.Width)*w),
		bounds.Min.Y+int(top+aws.ToFloat32(bb.Height)*h),
	).Intersect(bounds)
	return &r
}
