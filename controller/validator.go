package controller

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gameforum/logic"
	"gameforum/models"
	"gameforum/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/tr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	tr_translations "github.com/go-playground/validator/v10/translations/tr"
)

var trans ut.Translator

var usernameMessages = map[string]string{
	"en": "{0} may only contain letters, digits and underscores",
	"tr": "{0} yalnızca harf, rakam ve alt çizgi içerebilir",
}

// InitTrans installs field-name and message translation for the gin
// validator. locale is "en" or "tr"; anything else falls back to English.
func InitTrans(locale string) (err error) {
	if binding.Validator == nil {
		binding.Validator = &defaultValidator{validator: validator.New()}
	}
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	// Report json names so messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	enT := en.New()
	uni := ut.New(enT, enT, tr.New())
	if locale != "tr" {
		locale = "en"
	}
	trans, ok = uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	switch locale {
	case "tr":
		err = tr_translations.RegisterDefaultTranslations(v, trans)
	default:
		err = en_translations.RegisterDefaultTranslations(v, trans)
	}
	if err != nil {
		return err
	}

	if err = v.RegisterValidation("forum_username", func(fl validator.FieldLevel) bool {
		return logic.ValidUsername(fl.Field().String())
	}); err != nil {
		return err
	}
	err = v.RegisterTranslation("forum_username", trans,
		func(ut ut.Translator) error {
			return ut.Add("forum_username", usernameMessages[locale], true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("forum_username", fe.Field())
			return t
		})
	if err != nil {
		return err
	}

	v.RegisterStructValidation(SignUpParamStructLevelValidation, models.ParamSignUp{})
	return nil
}

// removeTopStruct strips the "ParamSignUp." prefix validator puts on keys.
func removeTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// SignUpParamStructLevelValidation checks that both passwords match.
func SignUpParamStructLevelValidation(sl validator.StructLevel) {
	su := sl.Current().Interface().(models.ParamSignUp)
	if su.Password != su.RePassword {
		sl.ReportError(su.RePassword, "re_password", "RePassword", "eqfield", "password")
	}
}

// bindError answers a failed ShouldBind*. Validation failures come back
// translated per field; anything else (bad JSON, wrong types) is a plain
// ErrInvalidParam.
func bindError(c *gin.Context, err error) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || trans == nil {
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}
	ResponseErrorWithMsg(c, errorx.CodeInvalidParam, removeTopStruct(errs.Translate(trans)))
}

// defaultValidator lets InitTrans run even when gin has no validator set.
type defaultValidator struct {
	validator *validator.Validate
}

func (v *defaultValidator) ValidateStruct(obj interface{}) error {
	return v.validator.Struct(obj)
}

func (v *defaultValidator) Engine() interface{} {
	return v.validator
}
