package catalog

// stdlibModules lists the importable top-level modules shipped with
// CPython 3.x, including a handful of names that only exist on some
// platforms (msvcrt, winreg) and a few legacy Python 2 names that still
// show up in dual-version codebases. Anything in this list is satisfied
// by the interpreter itself and must never be registered as a dependency.
var stdlibModules = []string{
	"__future__", "_thread", "abc", "aifc", "argparse", "array", "ast",
	"asyncio", "atexit", "audioop", "base64", "bdb", "binascii", "bisect",
	"builtins", "bz2", "calendar", "cgi", "cgitb", "chunk", "cmath", "cmd",
	"code", "codecs", "codeop", "collections", "colorsys", "compileall",
	"concurrent", "configparser", "contextlib", "contextvars", "copy",
	"copyreg", "cProfile", "crypt", "csv", "ctypes", "curses", "dataclasses",
	"datetime", "dbm", "decimal", "difflib", "dis", "doctest", "email",
	"encodings", "ensurepip", "enum", "errno", "faulthandler", "fcntl",
	"filecmp", "fileinput", "fnmatch", "fractions", "ftplib", "functools",
	"gc", "getopt", "getpass", "gettext", "glob", "graphlib", "grp", "gzip",
	"hashlib", "heapq", "hmac", "html", "http", "idlelib", "imaplib",
	"imghdr", "importlib", "inspect", "io", "ipaddress", "itertools", "json",
	"keyword", "lib2to3", "linecache", "locale", "logging", "lzma",
	"mailbox", "mailcap", "marshal", "math", "mimetypes", "mmap",
	"modulefinder", "msvcrt", "multiprocessing", "netrc", "nis", "nntplib",
	"numbers", "operator", "optparse", "os", "ossaudiodev", "pathlib",
	"pdb", "pickle", "pickletools", "pipes", "pkgutil", "platform",
	"plistlib", "poplib", "posix", "pprint", "profile", "pstats", "pty",
	"pwd", "py_compile", "pyclbr", "pydoc", "queue", "quopri", "random",
	"re", "readline", "reprlib", "resource", "rlcompleter", "runpy",
	"sched", "secrets", "select", "selectors", "shelve", "shlex", "shutil",
	"signal", "site", "smtplib", "sndhdr", "socket", "socketserver",
	"spwd", "sqlite3", "ssl", "stat", "statistics", "string", "stringprep",
	"struct", "subprocess", "sunau", "symtable", "sys", "sysconfig",
	"syslog", "tabnanny", "tarfile", "telnetlib", "tempfile", "termios",
	"test", "textwrap", "threading", "time", "timeit", "tkinter", "token",
	"tokenize", "tomllib", "trace", "traceback", "tracemalloc", "tty",
	"turtle", "turtledemo", "types", "typing", "unicodedata", "unittest",
	"urllib", "uu", "uuid", "venv", "warnings", "wave", "weakref",
	"webbrowser", "winreg", "winsound", "wsgiref", "xdrlib", "xml",
	"xmlrpc", "zipapp", "zipfile", "zipimport", "zlib", "zoneinfo",

	// Legacy Python 2 module names still seen in the wild.
	"StringIO", "ConfigParser", "Queue", "SocketServer", "Tkinter",
	"cPickle", "cStringIO", "urllib2", "urlparse",
}

// importRenames maps import names to the distribution name that provides
// them on PyPI. Keys are matched case-insensitively; entries with a dot
// cover submodule imports that must resolve to the parent distribution.
var importRenames = map[string]string{
	"attr":       "attrs",
	"bs4":        "beautifulsoup4",
	"cv2":        "opencv-python",
	"dateutil":   "python-dateutil",
	"dotenv":     "python-dotenv",
	"fitz":       "pymupdf",
	"gi":         "pygobject",
	"git":        "gitpython",
	"jose":       "python-jose",
	"jwt":        "pyjwt",
	"magic":      "python-magic",
	"mpl_toolkits": "matplotlib",
	"openid":     "python3-openid",
	"pil":        "pillow",
	"psycopg2":   "psycopg2-binary",
	"serial":     "pyserial",
	"six.moves":  "six",
	"sklearn":    "scikit-learn",
	"skimage":    "scikit-image",
	"slugify":    "python-slugify",
	"telegram":   "python-telegram-bot",
	"usb":        "pyusb",
	"wx":         "wxpython",
	"yaml":       "pyyaml",
	"zmq":        "pyzmq",
}
