package http

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var (
	arabicNameRe  = regexp.MustCompile(`^[\p{Arabic}\s]{3,72}$`)
	saudiIDRe     = regexp.MustCompile(`^[12]\d{9}$`)
	saudiMobileRe = regexp.MustCompile(`^(05\d{8}|9665\d{8}|\+9665\d{8})$`)
)

var joinValidator = newJoinValidator()

func newJoinValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("arabic_name", func(fl validator.FieldLevel) bool {
		return arabicNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("saudi_id", func(fl validator.FieldLevel) bool {
		return saudiIDRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("saudi_mobile", func(fl validator.FieldLevel) bool {
		return saudiMobileRe.MatchString(fl.Field().String())
	})
	return v
}

type joinForm struct {
	Name       string `json:"name" validate:"required,arabic_name"`
	NationalID string `json:"nationalId" validate:"required,saudi_id"`
	Mobile     string `json:"mobile" validate:"required,saudi_mobile"`
	Role       string `json:"role" validate:"required"`
}

var joinFieldErrors = map[string]string{
	"Name":       "الاسم يجب أن يكون بالأحرف العربية",
	"NationalID": "رقم الهوية الوطنية يجب أن يتكون من 10 أرقام ويبدأ بـ 1 أو 2",
	"Mobile":     "رقم الجوال السعودي غير صحيح",
	"Role":       "الصفة مطلوبة",
}

// validateJoin checks the pre-join identity form. It only validates shape;
// identity itself is attested by the verification code flow.
func (h *handlers) validateJoin(c *gin.Context) {
	var form joinForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "malformed body"})
		return
	}

	if err := joinValidator.Struct(form); err != nil {
		fields := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = joinFieldErrors[fe.Field()]
			}
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "fields": fields})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// codeStore keeps short-lived SMS verification codes in memory.
type codeStore struct {
	mu      sync.Mutex
	byPhone map[string]codeEntry
}

type codeEntry struct {
	code      string
	expiresAt time.Time
}

const codeTTL = 5 * time.Minute

func newCodeStore() *codeStore {
	return &codeStore{byPhone: make(map[string]codeEntry)}
}

func (s *codeStore) issue(mobile string, now time.Time) string {
	code := fmt.Sprintf("%06d", rand.IntN(1000000))
	s.mu.Lock()
	s.byPhone[mobile] = codeEntry{code: code, expiresAt: now.Add(codeTTL)}
	s.mu.Unlock()
	return code
}

func (s *codeStore) verify(mobile, code string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byPhone[mobile]
	if !ok || now.After(e.expiresAt) || e.code != code {
		return false
	}
	delete(s.byPhone, mobile)
	return true
}

func (h *handlers) sendVerificationCode(c *gin.Context) {
	var p struct {
		Mobile string `json:"mobile" binding:"required"`
	}
	if err := c.ShouldBindJSON(&p); err != nil || !saudiMobileRe.MatchString(p.Mobile) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "رقم الجوال السعودي غير صحيح"})
		return
	}

	code := h.codes.issue(p.Mobile, time.Now())
	log.Info().Str("module", "adapters.http").Str("mobile", p.Mobile).Msg("verification code issued")

	resp := gin.H{"success": true, "expiresInSeconds": int(codeTTL.Seconds())}
	// No SMS gateway in debug mode; surface the code for manual testing.
	if h.Cfg.Mode == "debug" {
		resp["code"] = code
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) verifyCode(c *gin.Context) {
	var p struct {
		Mobile string `json:"mobile" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"verified": false, "error": "mobile and code are required"})
		return
	}
	if !h.codes.verify(p.Mobile, p.Code, time.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"verified": false, "error": "رمز التحقق غير صحيح أو منتهي الصلاحية"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}
