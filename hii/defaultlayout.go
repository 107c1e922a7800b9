package hii

// DefaultLayout returns the built-in US-104 keyboard layout, matching the
// layout firmware falls back to before a platform-specific HII package is
// installed.
func DefaultLayout() *Layout {
	l := &Layout{
		GUID: DefaultKeyboardLayoutGUID,
		Descriptions: []Description{
			{Language: "en-US", Description: "English Keyboard"},
		},
	}

	shiftCaps := AffectedByStandardShift | AffectedByCapsLock
	shiftOnly := AffectedByStandardShift
	shiftNum := AffectedByStandardShift | AffectedByNumLock

	letter := func(key PhysicalKey, lower, upper rune) KeyDescriptor {
		return KeyDescriptor{Key: key, Unicode: lower, ShiftedUnicode: upper, AffectedBy: shiftCaps}
	}
	punct := func(key PhysicalKey, plain, shifted rune) KeyDescriptor {
		return KeyDescriptor{Key: key, Unicode: plain, ShiftedUnicode: shifted, AffectedBy: shiftOnly}
	}
	plainCtrl := func(key PhysicalKey, unicode rune) KeyDescriptor {
		return KeyDescriptor{Key: key, Unicode: unicode}
	}
	lock := func(key PhysicalKey, mod Modifier) KeyDescriptor {
		return KeyDescriptor{Key: key, Modifier: mod}
	}
	numpadNav := func(key PhysicalKey, digit rune, mod Modifier) KeyDescriptor {
		return KeyDescriptor{Key: key, Unicode: digit, Modifier: mod, AffectedBy: shiftNum}
	}

	l.Keys = append(l.Keys,
		letter(KeyC1, 'a', 'A'),
		letter(KeyB5, 'b', 'B'),
		letter(KeyB3, 'c', 'C'),
		letter(KeyC3, 'd', 'D'),
		letter(KeyC4, 'e', 'E'),
		letter(KeyC5, 'f', 'F'),
		letter(KeyC6, 'g', 'G'),
		letter(KeyD8, 'h', 'H'),
		letter(KeyC7, 'i', 'I'),
		letter(KeyC8, 'j', 'J'),
		letter(KeyC9, 'k', 'K'),
		letter(KeyB7, 'l', 'L'),
		letter(KeyB6, 'm', 'M'),
		letter(KeyD9, 'n', 'N'),
		letter(KeyD10, 'o', 'O'),
		letter(KeyD1, 'p', 'P'),
		letter(KeyD4, 'q', 'Q'),
		letter(KeyC2, 'r', 'R'),
		letter(KeyD5, 's', 'S'),
		letter(KeyD7, 't', 'T'),
		letter(KeyB4, 'u', 'U'),
		letter(KeyD2, 'v', 'V'),
		letter(KeyB2, 'w', 'W'),
		letter(KeyD6, 'x', 'X'),
		letter(KeyB1, 'y', 'Y'),
		letter(KeyB0, 'z', 'Z'),
	)

	digits := []struct {
		key     PhysicalKey
		plain   rune
		shifted rune
	}{
		{KeyE1, '1', '!'},
		{KeyE2, '2', '@'},
		{KeyE3, '3', '#'},
		{KeyE4, '4', '$'},
		{KeyE5, '5', '%'},
		{KeyE6, '6', '^'},
		{KeyE7, '7', '&'},
		{KeyE8, '8', '*'},
		{KeyE9, '9', '('},
		{KeyE10, '0', ')'},
	}
	for _, d := range digits {
		l.Keys = append(l.Keys, punct(d.key, d.plain, d.shifted))
	}

	l.Keys = append(l.Keys,
		plainCtrl(KeyEnter, '\r'),
		plainCtrl(KeyEsc, 0x1B),
		plainCtrl(KeyBackSpace, 0x08),
		plainCtrl(KeyTab, '\t'),
		plainCtrl(KeySpaceBar, ' '),

		punct(KeyE11, '-', '_'),
		punct(KeyE12, '=', '+'),
		punct(KeyD11, '[', '{'),
		punct(KeyD12, ']', '}'),
		punct(KeyD13, '\\', '|'),
		punct(KeyC12, '\\', '|'),
		punct(KeyC10, ';', ':'),
		punct(KeyC11, '\'', '"'),
		punct(KeyE0, '`', '~'),
		punct(KeyB8, ',', '<'),
		punct(KeyB9, '.', '>'),
		punct(KeyB10, '/', '?'),

		lock(KeyCapsLock, CapsLockModifier),
		KeyDescriptor{Key: KeyF1, Modifier: FunctionKeyOneModifier},
		KeyDescriptor{Key: KeyF2, Modifier: FunctionKeyTwoModifier},
		KeyDescriptor{Key: KeyF3, Modifier: FunctionKeyThreeModifier},
		KeyDescriptor{Key: KeyF4, Modifier: FunctionKeyFourModifier},
		KeyDescriptor{Key: KeyF5, Modifier: FunctionKeyFiveModifier},
		KeyDescriptor{Key: KeyF6, Modifier: FunctionKeySixModifier},
		KeyDescriptor{Key: KeyF7, Modifier: FunctionKeySevenModifier},
		KeyDescriptor{Key: KeyF8, Modifier: FunctionKeyEightModifier},
		KeyDescriptor{Key: KeyF9, Modifier: FunctionKeyNineModifier},
		KeyDescriptor{Key: KeyF10, Modifier: FunctionKeyTenModifier},
		KeyDescriptor{Key: KeyF11, Modifier: FunctionKeyElevenModifier},
		KeyDescriptor{Key: KeyF12, Modifier: FunctionKeyTwelveModifier},

		KeyDescriptor{Key: KeyPrint, Modifier: PrintModifier},
		KeyDescriptor{Key: KeySLck, Modifier: ScrollLockModifier},
		KeyDescriptor{Key: KeyPause, Modifier: PauseModifier},
		KeyDescriptor{Key: KeyIns, Modifier: InsertModifier},
		KeyDescriptor{Key: KeyHome, Modifier: HomeModifier},
		KeyDescriptor{Key: KeyPgUp, Modifier: PageUpModifier},
		KeyDescriptor{Key: KeyDel, Modifier: DeleteModifier},
		KeyDescriptor{Key: KeyEnd, Modifier: EndModifier},
		KeyDescriptor{Key: KeyPgDn, Modifier: PageDownModifier},
		KeyDescriptor{Key: KeyRightArrow, Modifier: RightArrowModifier},
		KeyDescriptor{Key: KeyLeftArrow, Modifier: LeftArrowModifier},
		KeyDescriptor{Key: KeyDownArrow, Modifier: DownArrowModifier},
		KeyDescriptor{Key: KeyUpArrow, Modifier: UpArrowModifier},

		lock(KeyNLck, NumLockModifier),
		plainCtrl(KeySlash, '/'),
		plainCtrl(KeyAsterisk, '*'),
		plainCtrl(KeyMinus, '-'),
		plainCtrl(KeyPlus, '+'),

		numpadNav(KeyOne, '1', EndModifier),
		numpadNav(KeyTwo, '2', DownArrowModifier),
		numpadNav(KeyThree, '3', PageDownModifier),
		numpadNav(KeyFour, '4', LeftArrowModifier),
		numpadNav(KeyFive, '5', NullModifier),
		numpadNav(KeySix, '6', RightArrowModifier),
		numpadNav(KeySeven, '7', HomeModifier),
		numpadNav(KeyEight, '8', UpArrowModifier),
		numpadNav(KeyNine, '9', PageUpModifier),
		numpadNav(KeyZero, '0', InsertModifier),
		numpadNav(KeyPeriod, '.', DeleteModifier),

		KeyDescriptor{Key: KeyA4, Modifier: MenuModifier},

		KeyDescriptor{Key: KeyLCtrl, Modifier: LeftControlModifier},
		KeyDescriptor{Key: KeyLShift, Modifier: LeftShiftModifier},
		KeyDescriptor{Key: KeyLAlt, Modifier: LeftAltModifier},
		KeyDescriptor{Key: KeyA0, Modifier: LeftLogoModifier},
		KeyDescriptor{Key: KeyRCtrl, Modifier: RightControlModifier},
		KeyDescriptor{Key: KeyRShift, Modifier: RightShiftModifier},
		KeyDescriptor{Key: KeyA2, Modifier: RightAltModifier},
		KeyDescriptor{Key: KeyA3, Modifier: RightLogoModifier},
	)

	return l
}

// DefaultPackage returns a Package containing exactly DefaultLayout.
func DefaultPackage() Package {
	return Package{Layouts: []*Layout{DefaultLayout()}}
}

// DefaultPackageList returns the full package list advertised when no
// platform-specific layout has been installed.
func DefaultPackageList() *PackageList {
	return &PackageList{GUID: DefaultKeyboardPkgListGUID, Package: DefaultPackage()}
}
