package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stayops/hotel-ops-backend/internal/middleware"
	"github.com/stayops/hotel-ops-backend/internal/models"
	"github.com/stayops/hotel-ops-backend/internal/services"
)

const maxImageSize = 10 << 20 // 10 MiB per file

type OwnerRoomHandler struct {
	roomService *services.RoomService
}

func NewOwnerRoomHandler(roomService *services.RoomService) *OwnerRoomHandler {
	return &OwnerRoomHandler{roomService: roomService}
}

// Register creates a new room with its images. The metadata travels as a
// JSON part named "roomRequest" alongside the "images" file parts.
// POST /api/owner/rooms
func (h *OwnerRoomHandler) Register(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.RegisterRoomRequest
	if !bindJSONPart(c, "roomRequest", &req) {
		return
	}

	images, ok := readImageParts(c, "images")
	if !ok {
		return
	}

	roomID, err := h.roomService.Register(c.Request.Context(), userCtx.UserID, &req, images)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": roomID})
}

// List returns the owner's rooms
// GET /api/owner/rooms
func (h *OwnerRoomHandler) List(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rooms, err := h.roomService.List(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// GetDetails returns a single room with all of its images
// GET /api/owner/rooms/:id
func (h *OwnerRoomHandler) GetDetails(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	roomID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	detail, err := h.roomService.GetDetails(userCtx.UserID, roomID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Update modifies a room, deletes the listed image URLs and appends any
// "newImages" file parts.
// PUT /api/owner/rooms/:id
func (h *OwnerRoomHandler) Update(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	roomID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req models.UpdateRoomRequest
	if !bindJSONPart(c, "roomRequest", &req) {
		return
	}

	newImages, ok := readImageParts(c, "newImages")
	if !ok {
		return
	}

	if err := h.roomService.Update(c.Request.Context(), userCtx.UserID, roomID, &req, newImages); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room updated"})
}

// Delete removes a room and its images
// DELETE /api/owner/rooms/:id
func (h *OwnerRoomHandler) Delete(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	roomID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.roomService.Delete(userCtx.UserID, roomID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}

// bindJSONPart decodes a JSON-encoded multipart form value into dst
func bindJSONPart(c *gin.Context, name string, dst interface{}) bool {
	raw := c.PostForm(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " part is required"})
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " payload: " + err.Error()})
		return false
	}
	return true
}

// readImageParts reads all uploaded files under the given form field
func readImageParts(c *gin.Context, field string) ([]services.UploadedImage, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return nil, false
	}

	files := form.File[field]
	images := make([]services.UploadedImage, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxImageSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image " + fh.Filename + " exceeds the size limit"})
			return nil, false
		}
		data, err := readFileHeader(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read " + fh.Filename})
			return nil, false
		}
		images = append(images, services.UploadedImage{Filename: fh.Filename, Data: data})
	}
	return images, true
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
