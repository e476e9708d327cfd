package handlers

import (
	"time"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/school-site/internal/errors"
	"github.com/pribylovaa/school-site/internal/models"
	"github.com/pribylovaa/school-site/internal/service"
)

// Время в Unix-секундах, UTC.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	ExpiresAt int64  `json:"expires_at"`
}

type identityResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	FromConfig bool   `json:"from_config"`
}

func identityFrom(i *service.Identity) identityResponse {
	return identityResponse{ID: i.ID, Username: i.Username, Role: i.Role.String(), FromConfig: i.FromConfig}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type changeUsernameRequest struct {
	CurrentPassword string `json:"current_password"`
	Username        string `json:"username"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func userFrom(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt.Unix(),
		UpdatedAt: u.UpdatedAt.Unix(),
	}
}

type announcementRequest struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published bool   `json:"published"`
}

func (in announcementRequest) toInput() service.AnnouncementInput {
	return service.AnnouncementInput{Title: in.Title, Body: in.Body, Published: in.Published}
}

type announcementResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Published   bool   `json:"published"`
	PublishedAt *int64 `json:"published_at,omitempty"`
	AuthorID    string `json:"author_id,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func announcementFrom(a *models.Announcement) announcementResponse {
	return announcementResponse{
		ID:          a.ID.String(),
		Title:       a.Title,
		Body:        a.Body,
		Published:   a.Published,
		PublishedAt: unixPtr(a.PublishedAt),
		AuthorID:    a.AuthorID,
		CreatedAt:   a.CreatedAt.Unix(),
		UpdatedAt:   a.UpdatedAt.Unix(),
	}
}

type announcementListResponse struct {
	Items         []announcementResponse `json:"items"`
	NextPageToken string                 `json:"next_page_token,omitempty"`
}

func announcementPageFrom(p *models.AnnouncementPage) announcementListResponse {
	out := announcementListResponse{
		Items:         make([]announcementResponse, 0, len(p.Items)),
		NextPageToken: p.NextPageToken,
	}
	for i := range p.Items {
		out.Items = append(out.Items, announcementFrom(&p.Items[i]))
	}
	return out
}

type staffRequest struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Email      string `json:"email"`
	ReportsTo  string `json:"reports_to"`
	SortOrder  int32  `json:"sort_order"`
}

func (in staffRequest) toInput() (service.StaffInput, error) {
	out := service.StaffInput{
		Name:       in.Name,
		Position:   in.Position,
		Department: in.Department,
		Email:      in.Email,
		SortOrder:  in.SortOrder,
	}

	if in.ReportsTo != "" {
		id, err := uuid.Parse(in.ReportsTo)
		if err != nil {
			return service.StaffInput{}, apierrors.ErrBadRequest
		}
		out.ReportsTo = &id
	}

	return out, nil
}

type staffResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Email      string `json:"email,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
	ReportsTo  string `json:"reports_to,omitempty"`
	SortOrder  int32  `json:"sort_order"`
}

func staffFrom(m *models.StaffMember) staffResponse {
	out := staffResponse{
		ID:         m.ID.String(),
		Name:       m.Name,
		Position:   m.Position,
		Department: m.Department,
		Email:      m.Email,
		PhotoURL:   m.PhotoURL,
		SortOrder:  m.SortOrder,
	}
	if m.ReportsTo != nil {
		out.ReportsTo = m.ReportsTo.String()
	}
	return out
}

type orgNodeResponse struct {
	staffResponse
	Reports []orgNodeResponse `json:"reports"`
}

func orgChartFrom(nodes []*models.OrgNode) []orgNodeResponse {
	out := make([]orgNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, orgNodeResponse{
			staffResponse: staffFrom(&n.StaffMember),
			Reports:       orgChartFrom(n.Reports),
		})
	}
	return out
}

type imageResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created_at"`
}

func imageFrom(img *models.GalleryImage) imageResponse {
	return imageResponse{ID: img.ID.String(), Title: img.Title, URL: img.ImageURL, CreatedAt: img.CreatedAt.Unix()}
}

type contactRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	CaptchaToken string `json:"captcha_token"`
}

type messageResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

func messageFrom(m *models.ContactMessage) messageResponse {
	return messageResponse{
		ID:        m.ID.String(),
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Read:      m.Read,
		CreatedAt: m.CreatedAt.Unix(),
	}
}

type viewRequest struct {
	Path string `json:"path"`
}

type statsResponse struct {
	Paths map[string]int64 `json:"paths"`
	Days  map[string]int64 `json:"days"`
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}
