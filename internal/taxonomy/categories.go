package taxonomy

// Names of categories referenced from code.
const (
	OnboardingRegistration = "入社（入社日までに登録）"
	OnboardingAfter        = "入社（入社日以降に登録）"
	Bonus                  = "賞与"
)

var builtinCategories = []Category{
	{
		Key:   "onboarding_registration",
		Name:  OnboardingRegistration,
		Label: OnboardingRegistration,
		Slug:  "onboarding-registration",
		Subcategories: []string{
			"本人に情報を登録してもらう場合",
			"給与情報の設定",
			"通勤手当の設定",
			"税金関係",
			"保険関係",
			"マイナンバー",
		},
	},
	{
		Key:   "onboarding_after",
		Name:  OnboardingAfter,
		Label: OnboardingAfter,
		Slug:  "onboarding-after",
		Subcategories: []string{
			"住民税を特別徴収に切り替えましょう",
			"住民税の通知書の内容をfreeeに登録しましょう",
			"社会保険の情報を反映する方法　※手続き完了したら設定しましょう！",
			"雇用保険の情報を反映する方法",
		},
	},
	{
		Key:   "director_registration",
		Name:  "役員の登録方法",
		Label: "役員の登録方法",
		Slug:  "director-registration",
		Subcategories: []string{
			"役員報酬の決定",
			"管理者が情報を登録する場合",
			"税金関係",
			"住民税を特別徴収している場合",
			"社会保険",
			"労働保険(雇用保険)",
		},
	},
	{
		Key:           "bonus",
		Name:          Bonus,
		Label:         Bonus,
		Slug:          "bonus",
		Subcategories: []string{"賞与"},
	},
	{
		Key:           "leave",
		Name:          "有休・休暇",
		Label:         "有休・休暇",
		Slug:          "leave",
		Subcategories: []string{"正社員の有給休暇", "パートの有給休暇", "特別休暇"},
	},
	{
		Key:           "resignation",
		Name:          "退職",
		Label:         "退職",
		Slug:          "resignation",
		Subcategories: []string{"退職日前に対応するべきこと", "退職日以降の対応するべきこと"},
	},
	{
		Key:   "attendance_correction",
		Name:  "勤怠の修正方法",
		Label: "勤怠の修正方法",
		Slug:  "attendance-correction",
		Subcategories: []string{
			"勤怠の修正、休憩の削除方法",
			"欠勤の登録方法",
			"遅刻・早退した時の設定方法",
			"1日の所定労働時間を変更したい場合",
			"誤って登録した勤怠を修正したい場合",
			"休日の設定方法",
			"振替休日",
			"代休",
			"休日を全員一括で付与する方法",
		},
	},
	{
		Key:           "shift_system",
		Name:          "1日8時間以内のシフト制",
		Label:         "1日8時間以内のシフト制",
		Slug:          "shift-system",
		Subcategories: []string{"シフトパターンの登録", "シフトの登録方法"},
	},
	{
		Key:   "monthly_variable_working",
		Name:  "1か月変形労働時間制",
		Label: "1か月変形労働時間制",
		Slug:  "monthly-variable-working",
		Subcategories: []string{
			"シフトパターンの登録",
			"1か月変形のシフトの登録方法",
			"1か月変形の場合の欠勤控除に関して",
		},
	},
	{
		Key:           "attendance",
		Name:          "勤怠",
		Label:         "勤怠",
		Slug:          "attendance",
		Subcategories: []string{"休日", "その他"},
	},
	{
		Key:           "salary_deduction",
		Name:          "給与控除の設定",
		Label:         "給与控除の設定",
		Slug:          "salary-deduction",
		Subcategories: []string{"控除額の設定方法"},
	},
	{
		Key:           "documents",
		Name:          "書類",
		Label:         "書類",
		Slug:          "documents",
		Subcategories: []string{"書類のダウンロード"},
	},
	{
		Key:           "other",
		Name:          "その他",
		Label:         "その他",
		Slug:          "other",
		Subcategories: []string{"freeeに招待する方法"},
	},
	{
		Key:           "flex",
		Name:          "フレックス",
		Label:         "フレックス",
		Slug:          "flex",
		Subcategories: []string{},
	},
	{
		Key:   "employee_attendance",
		Name:  "（従業員用）勤怠",
		Label: "（従業員用）勤怠",
		Slug:  "employee-attendance",
		Subcategories: []string{
			"勤怠の方法",
			"欠勤の登録方法",
			"振り替え休日の設定方法",
			"出勤した時にのみ通勤手当をもらう方法",
			"有給の設定方法",
			"休暇の設定方法",
		},
	},
}
