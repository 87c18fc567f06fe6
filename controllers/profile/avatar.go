package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"fintrek-backend/controllers/respond"
	"fintrek-backend/services"
)

const maxAvatarBytes = 5 << 20

// UploadAvatar stores a multipart "file" image and saves its public link on the profile.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.Avatars == nil {
		respond.Error(w, http.StatusServiceUnavailable, "Avatar uploads are not configured")
		return
	}
	user, ok := h.loadUser(w, r, "update")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	defer file.Close()
	if header.Size > maxAvatarBytes {
		respond.Error(w, http.StatusBadRequest, "File must be 5 MB or smaller")
		return
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	contentType := http.DetectContentType(sniff[:n])
	if !strings.HasPrefix(contentType, "image/") {
		respond.Error(w, http.StatusBadRequest, "File must be an image")
		return
	}

	name := fmt.Sprintf("avatar-%s%s", user.ID, path.Ext(header.Filename))
	body := io.MultiReader(bytes.NewReader(sniff[:n]), file)
	link, err := h.Avatars.Upload(r.Context(), name, contentType, body)
	if err != nil {
		if errors.Is(err, services.ErrAvatarsDisabled) {
			respond.Error(w, http.StatusServiceUnavailable, "Avatar uploads are not configured")
			return
		}
		log.Printf("Avatar upload error: %v", err)
		respond.Error(w, http.StatusBadGateway, "Failed to upload avatar")
		return
	}

	if err := h.DB.WithContext(r.Context()).Model(&user).Update("avatar_url", link).Error; err != nil {
		log.Printf("Avatar upload error: save link: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{
		"message":   "Avatar updated successfully",
		"avatarUrl": link,
	})
}
