package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinTitleLength       = 2
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxCommentLength     = 2000
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 100
	MinScreenshots       = 4
	MaxScreenshots       = 12
	MinTags              = 5
	MaxTags              = 30
	DeclarationsCount    = 4
	MinRating            = 1
	MaxRating            = 5
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateRating проверяет, что оценка — целое число от 1 до 5.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("оценка должна быть от %d до %d", MinRating, MaxRating)
	}
	return nil
}

// ValidateDisplayName проверяет отображаемое имя автора синтетического отзыва.
func ValidateDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fmt.Errorf("отображаемое имя обязательно")
	}

	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}

	displayNameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,!?()]+$`)
	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("отображаемое имя содержит недопустимые символы")
	}

	return nil
}

// ValidateTitle проверяет название приложения.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("название приложения обязательно")
	}
	return ValidateLength("название приложения", title, MinTitleLength, MaxTitleLength)
}

// ValidatePlatform проверяет платформу пакета.
func ValidatePlatform(platform string) error {
	switch platform {
	case "android", "ios", "both":
		return nil
	}
	return fmt.Errorf("платформа должна быть android, ios или both")
}

// ValidateComplianceAnswer проверяет ответ комплаенс-анкеты.
// allowBoth разрешает третий вариант для вопросов вида «Да/Нет/Оба».
func ValidateComplianceAnswer(fieldName, answer string, allowBoth bool) error {
	switch answer {
	case "yes", "no":
		return nil
	case "both":
		if allowBoth {
			return nil
		}
	}
	return fmt.Errorf("%s: допустимы только значения yes и no", fieldName)
}

// ValidateScreenshots проверяет количество скриншотов.
func ValidateScreenshots(count int) error {
	if count < MinScreenshots || count > MaxScreenshots {
		return fmt.Errorf("требуется от %d до %d скриншотов", MinScreenshots, MaxScreenshots)
	}
	return nil
}

// ValidateTags проверяет список тегов.
func ValidateTags(tags []string) error {
	if len(tags) < MinTags {
		return fmt.Errorf("требуется не менее %d тегов", MinTags)
	}
	if len(tags) > MaxTags {
		return fmt.Errorf("допустимо не более %d тегов", MaxTags)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("тег не может быть пустым")
		}
	}
	return nil
}

// ValidateDeclarations проверяет, что подтверждены все четыре декларации.
func ValidateDeclarations(declarations []string) error {
	if len(declarations) != DeclarationsCount {
		return fmt.Errorf("требуется ровно %d подтверждённых деклараций", DeclarationsCount)
	}
	for _, d := range declarations {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("декларация не может быть пустой")
		}
	}
	return nil
}
