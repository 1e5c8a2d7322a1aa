package store

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"stocksence/models"
	"stocksence/validation"
)

// Message keys double as the English text.
const (
	msgLoginSuccess       = "Login successful!"
	msgInvalidCredentials = "Invalid username or password"
	msgAccountLocked      = "Account is locked. Please try again later."
	msgRateLimited        = "Too many login attempts. Please try again in 15 minutes."
	msgInvalidCompany     = "Invalid company ID"
	msgRegistered         = "Account created successfully! Your company ID is %s. Keep it safe, you need it to sign in."
	msgUsernameExists     = "Username already exists"
	msgEmailExists        = "Email is already registered"
	msgValidation         = "Validation failed: %s"
	msgLoggedOut          = "Logged out successfully!"
	msgSessionExpired     = "Your session has expired. Please sign in again."
	msgNotAuthenticated   = "Please sign in to continue"
	msgForbidden          = "You do not have permission to perform this action"
	msgUserLocked         = "User locked successfully"
	msgUserUnlocked       = "User unlocked successfully"
	msgUserNotFound       = "User not found"
	msgCannotLockSelf     = "You cannot lock your own account"
	msgSerialAdded        = "Serial number added successfully!"
	msgSerialRemoved      = "Serial number removed successfully!"
	msgSerialInvalid      = "Serial number must contain 6 to 16 digits"
	msgSerialExists       = "Serial number already exists"
	msgSerialInUse        = "Serial number is in use and cannot be removed"
	msgSerialNotFound     = "Serial number not found"
	msgProductAdded       = "Product added successfully! Serial number: %s"
	msgProductUpdated     = "Product updated successfully!"
	msgProductDeleted     = "Product deleted successfully!"
	msgProductNotFound    = "Product not found"
	msgSaleCompleted      = "Sale completed successfully!"
	msgLowStock           = "Low stock warning: %s has %d items left!"
	msgInsufficientStock  = "Insufficient stock available!"
	msgSaleNotFound       = "Sale not found"
	msgSaleDeleted        = "Sale moved to trash"
	msgSaleRestored       = "Sale restored successfully"
	msgSalePurged         = "Sale permanently deleted"
	msgSaleVerified       = "Sale verified"
	msgTrashEmptied       = "Trash emptied: %d sales removed"
	msgGoogleUnavailable  = "Google sign-in is not available"
	msgGoogleFailed       = "Google sign-in failed"
	msgGoogleSuccess      = "Signed in with Google successfully!"
	msgGoogleWelcome      = "Welcome! Your new company ID is %s. Keep it safe."
	msgSettingsSaved      = "Settings saved"
	msgUnknownCurrency    = "Unsupported currency"
	msgBackupExported     = "Backup exported successfully"
	msgBackupImported     = "Backup imported successfully"
	msgBackupInvalid      = "Backup file is invalid or has been tampered with"
	msgBackupUnavailable  = "Backup encryption is not configured"
	msgUnexpected         = "An unexpected error occurred. Please try again."
	msgSaveFailed         = "Could not save your changes. Please try again."
	msgThemeInvalid       = "Theme must be light or dark"
	msgLanguageInvalid    = "Language must be en or ar"
	msgBackupProduct      = "Backup product %d (%s) is invalid: %s"
	msgListSeparator      = "; "
)

var arabic = map[string]string{
	msgLoginSuccess:       "تم تسجيل الدخول بنجاح!",
	msgInvalidCredentials: "اسم المستخدم أو كلمة المرور غير صحيحة",
	msgAccountLocked:      "الحساب مقفل. يرجى المحاولة لاحقاً.",
	msgRateLimited:        "محاولات دخول كثيرة. يرجى المحاولة بعد 15 دقيقة.",
	msgInvalidCompany:     "معرف الشركة غير صحيح",
	msgRegistered:         "تم إنشاء الحساب بنجاح! معرف شركتك هو %s. احتفظ به، ستحتاجه لتسجيل الدخول.",
	msgUsernameExists:     "اسم المستخدم موجود بالفعل",
	msgEmailExists:        "البريد الإلكتروني مسجل بالفعل",
	msgValidation:         "فشل التحقق: %s",
	msgLoggedOut:          "تم تسجيل الخروج بنجاح!",
	msgSessionExpired:     "انتهت صلاحية الجلسة. يرجى تسجيل الدخول مرة أخرى.",
	msgNotAuthenticated:   "يرجى تسجيل الدخول للمتابعة",
	msgForbidden:          "ليس لديك صلاحية لتنفيذ هذا الإجراء",
	msgUserLocked:         "تم قفل المستخدم بنجاح",
	msgUserUnlocked:       "تم إلغاء قفل المستخدم بنجاح",
	msgUserNotFound:       "المستخدم غير موجود",
	msgCannotLockSelf:     "لا يمكنك قفل حسابك",
	msgSerialAdded:        "تم إضافة الرقم التسلسلي بنجاح!",
	msgSerialRemoved:      "تم حذف الرقم التسلسلي بنجاح!",
	msgSerialInvalid:      "يجب أن يتكون الرقم التسلسلي من 6 إلى 16 رقماً",
	msgSerialExists:       "الرقم التسلسلي موجود بالفعل",
	msgSerialInUse:        "الرقم التسلسلي مستخدم ولا يمكن حذفه",
	msgSerialNotFound:     "الرقم التسلسلي غير موجود",
	msgProductAdded:       "تم إضافة المنتج بنجاح! الرقم التسلسلي: %s",
	msgProductUpdated:     "تم تحديث المنتج بنجاح!",
	msgProductDeleted:     "تم حذف المنتج بنجاح!",
	msgProductNotFound:    "المنتج غير موجود",
	msgSaleCompleted:      "تمت عملية البيع بنجاح!",
	msgLowStock:           "تحذير: المخزون منخفض، تبقى من %s عدد %d فقط!",
	msgInsufficientStock:  "الكمية المتوفرة غير كافية!",
	msgSaleNotFound:       "عملية البيع غير موجودة",
	msgSaleDeleted:        "تم نقل عملية البيع إلى سلة المحذوفات",
	msgSaleRestored:       "تمت استعادة عملية البيع بنجاح",
	msgSalePurged:         "تم حذف عملية البيع نهائياً",
	msgSaleVerified:       "تم التحقق من عملية البيع",
	msgTrashEmptied:       "تم إفراغ سلة المحذوفات: حذف %d عملية بيع",
	msgGoogleUnavailable:  "تسجيل الدخول عبر جوجل غير متاح",
	msgGoogleFailed:       "فشل تسجيل الدخول عبر جوجل",
	msgGoogleSuccess:      "تم تسجيل الدخول عبر جوجل بنجاح!",
	msgGoogleWelcome:      "مرحباً! معرف شركتك الجديد هو %s. احتفظ به.",
	msgSettingsSaved:      "تم حفظ الإعدادات",
	msgUnknownCurrency:    "العملة غير مدعومة",
	msgBackupExported:     "تم تصدير النسخة الاحتياطية بنجاح",
	msgBackupImported:     "تم استيراد النسخة الاحتياطية بنجاح",
	msgBackupInvalid:      "ملف النسخة الاحتياطية غير صالح أو تم التلاعب به",
	msgBackupUnavailable:  "تشفير النسخ الاحتياطي غير مهيأ",
	msgUnexpected:         "حدث خطأ غير متوقع. يرجى المحاولة مرة أخرى.",
	msgSaveFailed:         "تعذر حفظ التغييرات. يرجى المحاولة مرة أخرى.",
	msgThemeInvalid:       "يجب أن يكون المظهر فاتحاً أو داكناً",
	msgLanguageInvalid:    "يجب أن تكون اللغة en أو ar",
	msgBackupProduct:      "المنتج %d (%s) في النسخة الاحتياطية غير صالح: %s",
	msgListSeparator:      "؛ ",

	validation.MsgProductNameTooShort: "يجب أن يتكون اسم المنتج من حرفين على الأقل",
	validation.MsgProductNameTooLong:  "يجب ألا يتجاوز اسم المنتج 100 حرف",
	validation.MsgCategoryTooShort:    "يجب أن تتكون الفئة من حرفين على الأقل",
	validation.MsgQuantityNegative:    "يجب أن تكون الكمية رقماً غير سالب",
	validation.MsgPriceNotPositive:    "يجب أن يكون السعر رقماً موجباً",
	validation.MsgPriceTooHigh:        "لا يمكن أن يتجاوز السعر 1,000,000",
	validation.MsgProductIDRequired:   "معرف المنتج مطلوب",
	validation.MsgProductNameRequired: "اسم المنتج مطلوب",
	validation.MsgQuantityNotPositive: "يجب أن تكون الكمية رقماً موجباً",
	validation.MsgTotalNotPositive:    "يجب أن يكون المبلغ الإجمالي رقماً موجباً",
	validation.MsgTotalMismatch:       "حساب المبلغ الإجمالي غير صحيح",
	validation.MsgUsernameTooShort:    "يجب أن يتكون اسم المستخدم من 3 أحرف على الأقل",
	validation.MsgUsernameTooLong:     "يجب ألا يتجاوز اسم المستخدم 50 حرفاً",
	validation.MsgUsernameCharset:     "يمكن أن يحتوي اسم المستخدم على أحرف وأرقام وشرطات سفلية فقط",
	validation.MsgPasswordTooShort:    "يجب أن تتكون كلمة المرور من 6 أحرف على الأقل",
	validation.MsgEmailInvalid:        "صيغة البريد الإلكتروني غير صحيحة",
	validation.MsgRoleInvalid:         "دور المستخدم غير صالح",
}

var (
	messages = newCatalog()
	printers = map[string]*message.Printer{
		"en": message.NewPrinter(language.English, message.Catalog(messages)),
		"ar": message.NewPrinter(language.Arabic, message.Catalog(messages)),
	}
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, ar := range arabic {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Arabic, key, ar)
	}
	return b
}

// SupportedLanguages lists the languages notifications are rendered in.
func SupportedLanguages() []string {
	return []string{"en", "ar"}
}

func (s *Store) printer() *message.Printer {
	if p, ok := printers[s.state.Language]; ok {
		return p
	}
	return printers["en"]
}

// validationText renders the messages of a *validation.Error in the current
// language. Text outside the catalog is kept as is.
func (s *Store) validationText(err error) string {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return err.Error()
	}
	p := s.printer()
	parts := make([]string, len(verr.Messages))
	for i, m := range verr.Messages {
		if _, known := arabic[m]; known {
			m = p.Sprintf(m)
		}
		parts[i] = m
	}
	return strings.Join(parts, p.Sprintf(msgListSeparator))
}

// failValidation is fail for input that did not pass validation.
func (s *Store) failValidation(err error) error {
	return s.fail(err, msgValidation, s.validationText(err))
}

// notify queues a notification in the current language.
func (s *Store) notify(kind, key string, args ...any) {
	n := models.Notification{
		ID:        s.ids.NewID(),
		Type:      kind,
		Message:   s.printer().Sprintf(key, args...),
		CreatedAt: s.now(),
	}
	s.notifications = append(s.notifications, n)
	s.metrics.RecordNotification(kind)
}
