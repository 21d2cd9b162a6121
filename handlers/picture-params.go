package handler

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/krishkalaria12/pic-profile-maker/imaging"
	"github.com/krishkalaria12/pic-profile-maker/models"
	"github.com/krishkalaria12/pic-profile-maker/pictures"
)

// ParamError reports an invalid multipart field.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Message)
}

func parseIntParam(param, paramName string, def int) (int, error) {
	if param == "" {
		return def, nil
	}

	value, err := strconv.Atoi(param)
	if err != nil {
		return 0, &ParamError{paramName, "must be an integer"}
	}

	if value < 0 {
		return 0, &ParamError{paramName, "must not be negative"}
	}

	return value, nil
}

func parseQualityParam(c *fiber.Ctx) (models.Quality, error) {
	quality, err := models.ParseQuality(c.FormValue("quality"))
	if err != nil {
		return "", &ParamError{"quality", err.Error()}
	}
	return quality, nil
}

func parseColorParam(c *fiber.Ctx, name string, required bool) (color.Color, error) {
	value := c.FormValue(name)
	if value == "" {
		if required {
			return nil, &ParamError{name, "is required"}
		}
		return nil, nil
	}

	col, err := imaging.ParseColor(value)
	if err != nil {
		return nil, &ParamError{name, err.Error()}
	}
	return col, nil
}

// openUpload opens the "picture" file field. The returned closer must be called.
func openUpload(c *fiber.Ctx) (pictures.Upload, io.Closer, error) {
	file, err := c.FormFile("picture")
	if err != nil {
		return pictures.Upload{}, nil, &ParamError{"picture", "file is required"}
	}

	blobFile, err := file.Open()
	if err != nil {
		return pictures.Upload{}, nil, fmt.Errorf("failed to open upload: %w", err)
	}

	return pictures.Upload{Filename: file.Filename, Content: blobFile}, blobFile, nil
}

// parsePictureRequest reads every field of a face picture request.
func parsePictureRequest(c *fiber.Ctx) (pictures.Request, io.Closer, error) {
	quality, err := parseQualityParam(c)
	if err != nil {
		return pictures.Request{}, nil, err
	}

	colorA, err := parseColorParam(c, "color_a", true)
	if err != nil {
		return pictures.Request{}, nil, err
	}
	colorB, err := parseColorParam(c, "color_b", true)
	if err != nil {
		return pictures.Request{}, nil, err
	}
	border, err := parseColorParam(c, "border_color", false)
	if err != nil {
		return pictures.Request{}, nil, err
	}

	faceIndex, err := parseIntParam(c.FormValue("face_index"), "face_index", 0)
	if err != nil {
		return pictures.Request{}, nil, err
	}

	upload, closer, err := openUpload(c)
	if err != nil {
		return pictures.Request{}, nil, err
	}

	return pictures.Request{
		Upload:    upload,
		Colors:    imaging.ColorPair{colorA, colorB},
		Border:    border,
		Quality:   quality,
		FaceIndex: faceIndex,
	}, closer, nil
}
