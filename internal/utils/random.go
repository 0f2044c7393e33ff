package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/carelink-tw/med-reminder/backend/internal/domain"
	"github.com/carelink-tw/med-reminder/backend/internal/medschedule"
	"github.com/mozillazg/go-pinyin"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var roles = []domain.Role{
	domain.RoleAdmin,
	domain.RoleCaregiver,
	domain.RoleFamily,
}

func GenerateRandomRole() domain.Role {
	return roles[rand.Intn(len(roles))]
}

var digits = "0123456789"

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomUser(password string, emailDomainName string) (*domain.User, error) {
	fullName := GenerateRandomChineseName()
	username := GenerateUsernameFromChineseName(fullName)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		FullName:     fullName,
		Email:        username + "@" + emailDomainName,
		Role:         GenerateRandomRole(),
	}

	return user, nil
}

func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}

func GenerateRandomPatient(createdBy int64) *domain.Patient {
	// 1940~1969 年出生的长者
	birthYear := 1940 + rand.Intn(30)
	birthDate := fmt.Sprintf("%04d-%02d-%02d", birthYear, rand.Intn(12)+1, rand.Intn(28)+1)

	return &domain.Patient{
		FullName:  GenerateRandomChineseName(),
		BirthDate: birthDate,
		Notes:     "高血压随访中",
		CreatedBy: createdBy,
	}
}

var commonMedicationNames = []string{
	"阿莫西林", "布洛芬", "氨氯地平", "二甲双胍", "阿司匹林",
	"辛伐他汀", "奥美拉唑", "氯雷他定", "左甲状腺素", "头孢克肟",
}

var commonDosages = []string{"1 颗", "2 颗", "半颗", "5ml", "10ml"}

var namedTimingPlans = []medschedule.TimingPlan{
	medschedule.TimingPlan1,
	medschedule.TimingPlan2,
}

// GenerateRandomMedication 生成一条随机医嘱，时间参数保证能通过排程引擎的校验
func GenerateRandomMedication(patientID int64, timezone string, loc *time.Location) *domain.Medication {
	dosesPerDay := rand.Intn(4) + 1

	medication := &domain.Medication{
		PatientID:     patientID,
		Name:          commonMedicationNames[rand.Intn(len(commonMedicationNames))],
		Dosage:        commonDosages[rand.Intn(len(commonDosages))],
		DosesPerDay:   dosesPerDay,
		TreatmentDays: rand.Intn(12) + 3,
		Timezone:      timezone,
	}

	if rand.Intn(3) == 0 {
		// 自定义时间：在 [06:00, 23:00) 里为每次服药随机挑不重复的整点
		medication.TimingPlan = string(medschedule.TimingPlanCustom)
		hours := rand.Perm(17)[:dosesPerDay]
		for _, hour := range hours {
			medication.CustomTimes = append(medication.CustomTimes, fmt.Sprintf("%02d:00", hour+6))
		}
	} else {
		medication.TimingPlan = string(namedTimingPlans[rand.Intn(len(namedTimingPlans))])
	}

	// 首剂发生在当天的白天时段
	now := time.Now().In(loc)
	medication.FirstDoseAt = time.Date(now.Year(), now.Month(), now.Day(), rand.Intn(16)+7, rand.Intn(60), 0, 0, loc)

	return medication
}
