package constants

// Measure names as they appear in grading tables and uploaded files.
const (
	MeasureBMI          = "体重指数（BMI）"
	MeasureHeight       = "身高"
	MeasureWeight       = "体重"
	MeasureVitalCap     = "肺活量"
	MeasureDash50m      = "50米跑"
	MeasureSitAndReach  = "坐位体前屈"
	MeasureRopeSkipping = "一分钟跳绳"
	MeasureSitUps       = "一分钟仰卧起坐"
	MeasureShuttle50x8  = "50米×8往返跑"
	MeasureStandingJump = "立定跳远"
	MeasurePullUps      = "引体向上"
	MeasureRun800m      = "800米跑"
	MeasureRun1000m     = "1000米跑"
)

const (
	SchoolTypePrimary    = "小学"
	SchoolTypeMiddle     = "初中"
	SchoolTypeHigh       = "高中"
	SchoolTypeUniversity = "大学"
)

const (
	GenderMale   = "男"
	GenderFemale = "女"
	GenderAll    = "全部"
)

// Expected header row of a student roster export. Uploads whose header
// deviates from this list (length or set) are rejected outright.
var RosterUploadHeaders = []string{
	"年级",
	"班级",
	"姓名",
	"性别",
	"教育ID",
	"身份证件号码",
}

// Expected header row of a Dawei platform test-result export.
var TestUploadHeaders = []string{
	"年级编号",
	"班级编号",
	"班级名称",
	"学籍号",
	"民族代码",
	"姓名",
	"性别",
	"出生日期",
	"家庭住址",
	"身高(cm)",
	"体重(kg)",
	"肺活量(ml)",
	"50米跑(s)",
	"坐位体前屈(cm)",
	"一分钟跳绳(个）",
	"一分钟仰卧起坐(个)",
	"50米×8往返跑(s)",
	"立定跳远(cm)",
	"800米跑(s)",
	"1000米跑(s)",
	"引体向上(个)",
}

// TestUploadScoreOffset is the index of the first score column in a
// Dawei export row (columns before it identify the student).
const TestUploadScoreOffset = 9
