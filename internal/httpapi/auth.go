package httpapi

import (
	"net/http"

	"teklip/marketplace/internal/apperr"
	"teklip/marketplace/internal/model"
)

type emailRequest struct {
	Email string `json:"email"`
}

type emailCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email                string `json:"email"`
	Code                 string `json:"code"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

func validate(errs []model.FieldError) error {
	if len(errs) > 0 {
		return apperr.Validation(errs)
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validate(model.ValidateRegistration(req)); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req emailCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validate(model.ValidateRequired(map[string]string{"email": req.Email, "code": req.Code})); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validate(model.ValidateRequired(map[string]string{"email": req.Email})); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.ResendEmailVerificationCode(r.Context(), req.Email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	fields := map[string]string{"email": req.Email, "password": req.Password}
	if err := validate(model.ValidateRequired(fields, "password")); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	writeJSON(w, http.StatusOK, claims.Payload())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	pair, err := s.auth.Refresh(r.Context(), claims.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validate(model.ValidateRequired(map[string]string{"email": req.Email})); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCheckResetCode(w http.ResponseWriter, r *http.Request) {
	var req emailCodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validate(model.ValidateRequired(map[string]string{"email": req.Email, "code": req.Code})); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.CheckPasswordResetCode(r.Context(), req.Email, req.Code)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	fields := map[string]string{
		"email":                req.Email,
		"code":                 req.Code,
		"password":             req.Password,
		"passwordConfirmation": req.PasswordConfirmation,
	}
	if err := validate(model.ValidateRequired(fields, "password", "passwordConfirmation")); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.auth.ResetPassword(r.Context(), req.Email, req.Code, req.Password, req.PasswordConfirmation)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
