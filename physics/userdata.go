package physics

import "image/color"

// Role is the physical purpose of a body or fixture.
type Role string

const (
	RoleNone      Role = ""
	RoleWall      Role = "wall"
	RoleStart     Role = "start"
	RoleEnd       Role = "end"
	RoleChassis   Role = "chassis"
	RoleDirection Role = "direction"
	RoleSensor    Role = "sensor"
	RoleGround    Role = "ground"
	RoleFriction  Role = "friction"
	RoleMaze      Role = "maze"
	RoleCar       Role = "car"
)

// Style is presentation only. Nothing in the simulation reads it.
type Style struct {
	Border color.RGBA `json:"border" bson:"border"`
	Fill   color.RGBA `json:"fill" bson:"fill"`
}

// UserData tags bodies, fixtures and joints.
type UserData struct {
	Role  Role  `json:"role" bson:"role"`
	Style Style `json:"style" bson:"style"`
}

// Tag builds user data from a role and border/fill colours.
func Tag(role Role, border, fill color.RGBA) UserData {
	return UserData{Role: role, Style: Style{Border: border, Fill: fill}}
}

// Palette mirrors the colours the renderer has always drawn with.
var (
	WallStyle    = Style{Border: color.RGBA{R: 172, B: 172, A: 255}, Fill: color.RGBA{R: 172, B: 172, A: 127}}
	StartStyle   = Style{Border: color.RGBA{G: 255, A: 255}, Fill: color.RGBA{G: 255, A: 64}}
	EndStyle     = Style{Border: color.RGBA{R: 255, A: 255}, Fill: color.RGBA{R: 255, A: 64}}
	ChassisStyle = Style{Border: color.RGBA{R: 64, G: 64, B: 255, A: 255}, Fill: color.RGBA{R: 64, G: 64, B: 255, A: 127}}
	DirectionStyle = Style{Border: color.RGBA{B: 255, A: 255}, Fill: color.RGBA{B: 255, A: 127}}
	SensorStyle  = Style{Border: color.RGBA{G: 255, A: 255}, Fill: color.RGBA{G: 255, A: 64}}
)
